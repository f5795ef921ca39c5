package adapter

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/settlement-switch/internal/errs"
	"github.com/yourorg/settlement-switch/internal/model"
	"github.com/yourorg/settlement-switch/internal/types"
)

// Stargate estimates
const (
	StargateName    = "Stargate"
	StargatePoolBps = 6
	stargateTime    = 900
	stargateGas     = 250_000
)

// layerZeroChainIDs maps EVM chain ids to the LayerZero ids Stargate routes by
var layerZeroChainIDs = map[types.ChainID]uint16{
	types.ChainEthereum:  101,
	types.ChainBSC:       102,
	types.ChainAvalanche: 106,
	types.ChainPolygon:   109,
	types.ChainArbitrum:  110,
	types.ChainOptimism:  111,
	types.ChainBase:      184,
}

// Stargate is the pool-based provider. Transfers go through one router and
// each asset is bound to a liquidity pool.
type Stargate struct {
	*core
	router common.Address
	policy FeePolicy
}

// NewStargate creates a Stargate provider routing through router
func NewStargate(authority, router common.Address, d Dispatcher) *Stargate {
	return &Stargate{
		core:   newCore(StargateName, authority, stargateTime, stargateGas, d),
		router: router,
		policy: PoolBased{Bps: StargatePoolBps},
	}
}

// AdmitAsset adds or updates an asset. PoolID must be set.
func (s *Stargate) AdmitAsset(caller, asset common.Address, params AssetParams) error {
	const op = "stargate.AdmitAsset"
	return s.admit(op, caller, asset, params, func(p AssetParams) error {
		if p.PoolID == 0 {
			return errs.Ef(op, errs.ErrInvalidAddress, "pool id is required")
		}
		return nil
	})
}

// SetEndpoint replaces the Stargate router
func (s *Stargate) SetEndpoint(caller, router common.Address) error {
	const op = "stargate.SetEndpoint"
	if caller != s.authority {
		return errs.E(op, errs.ErrUnauthorized)
	}
	if router == (common.Address{}) {
		return errs.E(op, errs.ErrInvalidAddress)
	}
	s.mu.Lock()
	s.router = router
	s.mu.Unlock()
	logrus.WithField("router", router.Hex()).Info("Stargate router set")
	return nil
}

// Quote implements BridgeAdapter. Destinations without a LayerZero id are
// quoted as unavailable.
func (s *Stargate) Quote(_ context.Context, _, to types.ChainID, asset common.Address, amount *uint256.Int) (model.Quote, error) {
	q, err := s.quote(asset, amount, s.policy.Fee)
	if err != nil {
		return q, err
	}
	if _, ok := layerZeroChainIDs[to]; !ok {
		q.Available = false
	}
	return q, nil
}

// Transfer implements BridgeAdapter
func (s *Stargate) Transfer(ctx context.Context, to types.ChainID, asset common.Address, amount *uint256.Int, recipient common.Address, data []byte) error {
	const op = "stargate.Transfer"
	params, err := s.prepare(asset, amount, recipient)
	if err != nil {
		return err
	}
	dst, ok := layerZeroChainIDs[to]
	if !ok {
		return errs.Ef(op, errs.ErrInvalidChain, "no stargate route to %s", to)
	}

	s.mu.RLock()
	router := s.router
	s.mu.RUnlock()
	if router == (common.Address{}) {
		return errs.Ef(op, errs.ErrEndpointNotSet, "stargate router")
	}
	if data == nil {
		data = []byte{}
	}

	pool := new(big.Int).SetUint64(params.PoolID)
	return s.dispatch(ctx, Call{
		To:     router,
		Method: MethodSwap,
		Args: []interface{}{
			dst,
			pool,
			pool,
			recipient,
			amount.ToBig(),
			slippageFloor(amount).ToBig(),
			recipient,
			data,
		},
	})
}
