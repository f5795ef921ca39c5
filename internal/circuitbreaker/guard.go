package circuitbreaker

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/settlement-switch/internal/adapter"
	"github.com/yourorg/settlement-switch/internal/errs"
	"github.com/yourorg/settlement-switch/internal/model"
	"github.com/yourorg/settlement-switch/internal/types"
)

// Guard wraps a provider with a circuit breaker. While the circuit is open
// the provider quotes as unavailable and transfers fail fast.
type Guard struct {
	adapter.BridgeAdapter
	breaker *CircuitBreaker
}

// NewGuard wraps inner with breaker
func NewGuard(inner adapter.BridgeAdapter, breaker *CircuitBreaker) *Guard {
	return &Guard{BridgeAdapter: inner, breaker: breaker}
}

// Breaker returns the breaker guarding the provider
func (g *Guard) Breaker() *CircuitBreaker {
	return g.breaker
}

// Unwrap returns the guarded provider
func (g *Guard) Unwrap() adapter.BridgeAdapter {
	return g.BridgeAdapter
}

// Describe reports the provider inactive while the circuit is open and the
// reset delay has not passed
func (g *Guard) Describe() adapter.Info {
	info := g.BridgeAdapter.Describe()
	if !g.breaker.Ready() {
		info.Active = false
	}
	return info
}

// Quote implements adapter.BridgeAdapter. A quote with an erroneous fee
// trips the circuit and is returned unavailable.
func (g *Guard) Quote(ctx context.Context, from, to types.ChainID, asset common.Address, amount *uint256.Int) (model.Quote, error) {
	q, err := g.BridgeAdapter.Quote(ctx, from, to, asset, amount)
	if err != nil {
		return q, err
	}
	if !g.breaker.Ready() {
		q.Available = false
		return q, nil
	}
	if err := g.breaker.CheckFee(q.Fee, amount); err != nil {
		logrus.WithField("provider", q.ProviderName).WithError(err).Warn("Quote rejected by circuit breaker")
		q.Available = false
	}
	return q, nil
}

// Transfer implements adapter.BridgeAdapter. Only downstream failures count
// against the provider; validation failures are the caller's.
func (g *Guard) Transfer(ctx context.Context, to types.ChainID, asset common.Address, amount *uint256.Int, recipient common.Address, data []byte) error {
	if err := g.breaker.Allow(); err != nil {
		return errs.Unavailable("guard.Transfer", err)
	}
	err := g.BridgeAdapter.Transfer(ctx, to, asset, amount, recipient, data)
	switch {
	case err == nil:
		g.breaker.RecordSuccess()
	case errs.IsKind(err, errs.KindUnavailable):
		g.breaker.RecordFailure(err)
	}
	return err
}
