package adapter

import (
	"github.com/holiman/uint256"

	"github.com/yourorg/settlement-switch/internal/fixedpoint"
)

// FeePolicy computes a provider fee in the asset's native unit
type FeePolicy interface {
	Fee(amount *uint256.Int) *uint256.Int
}

// FlatFee charges amount/Divisor
type FlatFee struct {
	Divisor uint64
}

// Fee implements FeePolicy
func (f FlatFee) Fee(amount *uint256.Int) *uint256.Int {
	return fixedpoint.Div(amount, fixedpoint.New(f.Divisor))
}

// Proportional charges Bps basis points of the amount. Adjustable
// proportional fees are capped at fixedpoint.MaxFeeBps by their setters.
type Proportional struct {
	Bps uint64
}

// Fee implements FeePolicy
func (p Proportional) Fee(amount *uint256.Int) *uint256.Int {
	return fixedpoint.Bps(amount, p.Bps)
}

// ProportionalPlusLiquidity charges a bonder fee plus a liquidity provider fee
type ProportionalPlusLiquidity struct {
	Bps          uint64
	LiquidityBps uint64
}

// Fee implements FeePolicy
func (p ProportionalPlusLiquidity) Fee(amount *uint256.Int) *uint256.Int {
	return fixedpoint.Add(fixedpoint.Bps(amount, p.Bps), fixedpoint.Bps(amount, p.LiquidityBps))
}

// PoolBased charges the fixed pool fee of a liquidity pool protocol
type PoolBased struct {
	Bps uint64
}

// Fee implements FeePolicy
func (p PoolBased) Fee(amount *uint256.Int) *uint256.Int {
	return fixedpoint.Bps(amount, p.Bps)
}

// slippageFloor returns the minimum accepted output at 0.5% slippage
func slippageFloor(amount *uint256.Int) *uint256.Int {
	return fixedpoint.MulDiv(amount, fixedpoint.New(995), fixedpoint.New(1000))
}
