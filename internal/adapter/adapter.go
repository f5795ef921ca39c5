// Package adapter implements the bridge providers the router can settle
// through. Every provider exposes the same BridgeAdapter capability and
// differs only in its fee policy, its estimates and the downstream call it
// dispatches.
package adapter

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/settlement-switch/internal/errs"
	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/model"
	"github.com/yourorg/settlement-switch/internal/types"
)

//go:generate mockgen -source=adapter.go -destination=mock/bridge_adapter.go

// Info is the provider self-description read at admission
type Info struct {
	Name   string
	Active bool
}

// BridgeAdapter is the capability the router consumes
type BridgeAdapter interface {
	// Describe returns the provider name and whether it accepts traffic
	Describe() Info

	// Quote estimates a transfer without side effects
	Quote(ctx context.Context, from, to types.ChainID, asset common.Address, amount *uint256.Int) (model.Quote, error)

	// Transfer initiates the transfer downstream. It either fully initiates
	// or fails with no effect.
	Transfer(ctx context.Context, to types.ChainID, asset common.Address, amount *uint256.Int, recipient common.Address, data []byte) error
}

// Admin is the authority-gated surface shared by every provider
type Admin interface {
	AdmitAsset(caller, asset common.Address, params AssetParams) error
	RemoveAsset(caller, asset common.Address) error
	SetActive(caller common.Address, active bool) error
	SupportedAssets() []common.Address
}

// EndpointSetter is implemented by providers with a single downstream contract
type EndpointSetter interface {
	SetEndpoint(caller, endpoint common.Address) error
}

// FeeSetter is implemented by providers with an adjustable proportional fee
type FeeSetter interface {
	SetFeeBps(caller common.Address, bps uint64) error
}

// AssetParams configures one admitted asset
type AssetParams struct {
	// MinAmount is the smallest accepted amount; nil means no minimum
	MinAmount *uint256.Int

	// Endpoint is the per-asset downstream contract, e.g. a Hop bridge
	Endpoint common.Address

	// AMM is the per-asset Hop AMM wrapper
	AMM common.Address

	// PoolID is the Stargate liquidity pool of the asset
	PoolID uint64
}

// core holds the state every provider variant shares
type core struct {
	name          string
	authority     common.Address
	estimatedTime uint64
	estimatedGas  uint64
	dispatcher    Dispatcher
	now           func() time.Time

	mu     sync.RWMutex
	active bool
	assets map[common.Address]AssetParams
}

func newCore(name string, authority common.Address, estimatedTime, estimatedGas uint64, d Dispatcher) *core {
	if d == nil {
		d = NopDispatcher{}
	}
	return &core{
		name:          name,
		authority:     authority,
		estimatedTime: estimatedTime,
		estimatedGas:  estimatedGas,
		dispatcher:    d,
		now:           time.Now,
		active:        true,
		assets:        make(map[common.Address]AssetParams),
	}
}

// Describe returns the provider name and whether it accepts traffic
func (c *core) Describe() Info {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Info{Name: c.name, Active: c.active}
}

// SetClock overrides the clock used for deadlines and quote timestamps
func (c *core) SetClock(now func() time.Time) {
	c.now = now
}

// SetActive pauses or resumes the provider
func (c *core) SetActive(caller common.Address, active bool) error {
	if caller != c.authority {
		return errs.E("adapter.SetActive", errs.ErrUnauthorized)
	}
	c.mu.Lock()
	c.active = active
	c.mu.Unlock()
	logrus.WithFields(logrus.Fields{"provider": c.name, "active": active}).Info("Provider activity changed")
	return nil
}

// RemoveAsset withdraws support for an asset
func (c *core) RemoveAsset(caller, asset common.Address) error {
	const op = "adapter.RemoveAsset"
	if caller != c.authority {
		return errs.E(op, errs.ErrUnauthorized)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.assets[asset]; !ok {
		return errs.Ef(op, errs.ErrUnsupportedAsset, "asset %s", asset.Hex())
	}
	delete(c.assets, asset)
	return nil
}

// SupportedAssets lists admitted assets in address order
func (c *core) SupportedAssets() []common.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]common.Address, 0, len(c.assets))
	for a := range c.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

// admit stores params for asset after the variant validated them
func (c *core) admit(op string, caller, asset common.Address, params AssetParams, validate func(AssetParams) error) error {
	if caller != c.authority {
		return errs.E(op, errs.ErrUnauthorized)
	}
	if asset == (common.Address{}) {
		return errs.E(op, errs.ErrInvalidAddress)
	}
	if validate != nil {
		if err := validate(params); err != nil {
			return err
		}
	}
	if params.MinAmount != nil {
		params.MinAmount = new(uint256.Int).Set(params.MinAmount)
	}

	c.mu.Lock()
	c.assets[asset] = params
	c.mu.Unlock()

	logrus.WithFields(logrus.Fields{"provider": c.name, "asset": asset.Hex()}).Debug("Asset admitted")
	return nil
}

// admission applies the checks shared by Quote and Transfer. The caller must
// hold c.mu.
func (c *core) admission(op string, asset common.Address, amount *uint256.Int) (AssetParams, error) {
	params, ok := c.assets[asset]
	if !ok {
		return AssetParams{}, errs.Ef(op, errs.ErrUnsupportedAsset, "asset %s", asset.Hex())
	}
	if amount == nil {
		return AssetParams{}, errs.E(op, errs.ErrInvalidAmount)
	}
	if params.MinAmount != nil && amount.Lt(params.MinAmount) {
		return AssetParams{}, errs.Ef(op, errs.ErrBelowMinimum, "minimum %s", fixedpoint.String(params.MinAmount))
	}
	return params, nil
}

// quote builds a quote for an admitted asset using fee
func (c *core) quote(asset common.Address, amount *uint256.Int, fee func(*uint256.Int) *uint256.Int) (model.Quote, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, err := c.admission("adapter.Quote", asset, amount); err != nil {
		return model.Quote{}, err
	}
	return model.Quote{
		ProviderName:  c.name,
		EstimatedTime: c.estimatedTime,
		EstimatedGas:  c.estimatedGas,
		Fee:           fee(amount),
		Available:     c.active,
	}, nil
}

// prepare runs the transfer admission checks and returns the asset params
func (c *core) prepare(asset common.Address, amount *uint256.Int, recipient common.Address) (AssetParams, error) {
	const op = "adapter.Transfer"
	if amount == nil || amount.IsZero() {
		return AssetParams{}, errs.E(op, errs.ErrInvalidAmount)
	}
	if recipient == (common.Address{}) {
		return AssetParams{}, errs.E(op, errs.ErrInvalidAddress)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.active {
		return AssetParams{}, errs.Ef(op, errs.ErrProviderUnavailable, "%s is paused", c.name)
	}
	return c.admission(op, asset, amount)
}

// dispatch hands the downstream call to the dispatcher
func (c *core) dispatch(ctx context.Context, call Call) error {
	if err := c.dispatcher.Dispatch(ctx, call); err != nil {
		return errs.Unavailable("adapter.Transfer", err)
	}
	logrus.WithFields(logrus.Fields{
		"provider": c.name,
		"endpoint": call.To.Hex(),
		"method":   call.Method,
	}).Info("Transfer dispatched")
	return nil
}
