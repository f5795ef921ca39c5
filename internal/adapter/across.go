package adapter

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/settlement-switch/internal/errs"
	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/model"
	"github.com/yourorg/settlement-switch/internal/types"
)

// Across estimates and defaults
const (
	AcrossName            = "Across Protocol"
	DefaultRelayerFeeBps  = 15
	acrossTime            = 180
	acrossGas             = 120_000
	relayerFeePctPerBasis = 100_000_000_000_000 // 1e18 == 100%
)

// Across is the relayer-based provider. One spoke pool serves every asset
// and the relayer fee is a capped proportional fee.
type Across struct {
	*core
	spokePool common.Address
	feeBps    uint64
}

// NewAcross creates an Across provider dispatching deposits to spokePool.
// A zero spokePool must be set with SetEndpoint before transfers succeed.
func NewAcross(authority, spokePool common.Address, d Dispatcher) *Across {
	return &Across{
		core:      newCore(AcrossName, authority, acrossTime, acrossGas, d),
		spokePool: spokePool,
		feeBps:    DefaultRelayerFeeBps,
	}
}

// AdmitAsset adds or updates an asset; only MinAmount is used
func (a *Across) AdmitAsset(caller, asset common.Address, params AssetParams) error {
	return a.admit("across.AdmitAsset", caller, asset, params, nil)
}

// SetEndpoint replaces the spoke pool
func (a *Across) SetEndpoint(caller, spokePool common.Address) error {
	const op = "across.SetEndpoint"
	if caller != a.authority {
		return errs.E(op, errs.ErrUnauthorized)
	}
	if spokePool == (common.Address{}) {
		return errs.E(op, errs.ErrInvalidAddress)
	}
	a.mu.Lock()
	a.spokePool = spokePool
	a.mu.Unlock()
	logrus.WithField("spoke_pool", spokePool.Hex()).Info("Across spoke pool set")
	return nil
}

// SetFeeBps sets the relayer fee, at most 10%
func (a *Across) SetFeeBps(caller common.Address, bps uint64) error {
	const op = "across.SetFeeBps"
	if caller != a.authority {
		return errs.E(op, errs.ErrUnauthorized)
	}
	if bps > fixedpoint.MaxFeeBps {
		return errs.Ef(op, errs.ErrFeeTooHigh, "%d bps", bps)
	}
	a.mu.Lock()
	a.feeBps = bps
	a.mu.Unlock()
	return nil
}

// FeeBps returns the current relayer fee
func (a *Across) FeeBps() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.feeBps
}

func (a *Across) policy() FeePolicy {
	return Proportional{Bps: a.feeBps}
}

// Quote implements BridgeAdapter
func (a *Across) Quote(_ context.Context, _, _ types.ChainID, asset common.Address, amount *uint256.Int) (model.Quote, error) {
	// quote takes the read lock; the fee closure runs under it
	return a.quote(asset, amount, func(v *uint256.Int) *uint256.Int { return a.policy().Fee(v) })
}

// Transfer implements BridgeAdapter
func (a *Across) Transfer(ctx context.Context, to types.ChainID, asset common.Address, amount *uint256.Int, recipient common.Address, _ []byte) error {
	if _, err := a.prepare(asset, amount, recipient); err != nil {
		return err
	}

	a.mu.RLock()
	spokePool, feeBps := a.spokePool, a.feeBps
	a.mu.RUnlock()
	if spokePool == (common.Address{}) {
		return errs.Ef("across.Transfer", errs.ErrEndpointNotSet, "spoke pool")
	}

	return a.dispatch(ctx, Call{
		To:     spokePool,
		Method: MethodDeposit,
		Args: []interface{}{
			recipient,
			asset,
			amount.ToBig(),
			new(big.Int).SetUint64(uint64(to)),
			feeBps * relayerFeePctPerBasis,
			uint32(a.now().Unix()),
		},
	})
}
