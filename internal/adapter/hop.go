package adapter

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/yourorg/settlement-switch/internal/errs"
	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/model"
	"github.com/yourorg/settlement-switch/internal/types"
)

// Hop estimates and defaults
const (
	HopName             = "Hop Protocol"
	DefaultBonderFeeBps = 10
	HopLiquidityFeeBps  = 4
	hopTime             = 300
	hopGas              = 150_000
	hopDeadline         = 20 * time.Minute
)

// Hop is the bonder-based provider. Each asset has its own bridge and AMM
// wrapper, and the fee is the bonder fee plus the AMM liquidity fee.
type Hop struct {
	*core
	bonderFeeBps uint64
}

// NewHop creates a Hop provider
func NewHop(authority common.Address, d Dispatcher) *Hop {
	return &Hop{
		core:         newCore(HopName, authority, hopTime, hopGas, d),
		bonderFeeBps: DefaultBonderFeeBps,
	}
}

// AdmitAsset adds or updates an asset. Endpoint (the Hop bridge) and AMM
// must both be set.
func (h *Hop) AdmitAsset(caller, asset common.Address, params AssetParams) error {
	const op = "hop.AdmitAsset"
	return h.admit(op, caller, asset, params, func(p AssetParams) error {
		if p.Endpoint == (common.Address{}) || p.AMM == (common.Address{}) {
			return errs.Ef(op, errs.ErrInvalidAddress, "hop bridge and AMM are required")
		}
		return nil
	})
}

// SetFeeBps sets the bonder fee, at most 10%
func (h *Hop) SetFeeBps(caller common.Address, bps uint64) error {
	const op = "hop.SetFeeBps"
	if caller != h.authority {
		return errs.E(op, errs.ErrUnauthorized)
	}
	if bps > fixedpoint.MaxFeeBps {
		return errs.Ef(op, errs.ErrFeeTooHigh, "%d bps", bps)
	}
	h.mu.Lock()
	h.bonderFeeBps = bps
	h.mu.Unlock()
	return nil
}

func (h *Hop) policy() FeePolicy {
	return ProportionalPlusLiquidity{Bps: h.bonderFeeBps, LiquidityBps: HopLiquidityFeeBps}
}

// Quote implements BridgeAdapter
func (h *Hop) Quote(_ context.Context, _, _ types.ChainID, asset common.Address, amount *uint256.Int) (model.Quote, error) {
	return h.quote(asset, amount, func(v *uint256.Int) *uint256.Int { return h.policy().Fee(v) })
}

// Transfer implements BridgeAdapter
func (h *Hop) Transfer(ctx context.Context, to types.ChainID, asset common.Address, amount *uint256.Int, recipient common.Address, _ []byte) error {
	params, err := h.prepare(asset, amount, recipient)
	if err != nil {
		return err
	}
	if params.Endpoint == (common.Address{}) {
		return errs.Ef("hop.Transfer", errs.ErrEndpointNotSet, "hop bridge for %s", asset.Hex())
	}

	h.mu.RLock()
	fee := h.policy().Fee(amount)
	h.mu.RUnlock()

	deadline := h.now().Add(hopDeadline).Unix()
	return h.dispatch(ctx, Call{
		To:     params.Endpoint,
		Method: MethodSendToL2,
		Args: []interface{}{
			new(big.Int).SetUint64(uint64(to)),
			recipient,
			amount.ToBig(),
			slippageFloor(amount).ToBig(),
			big.NewInt(deadline),
			common.Address{},
			fee.ToBig(),
		},
	})
}
