// Package router selects the cheapest bridge provider for a transfer and
// executes it, keeping aggregate usage statistics.
//
// Every public operation runs under one mutex, so a failed operation leaves
// the registry, the supported assets and the statistics unchanged.
package router

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/yourorg/settlement-switch/internal/adapter"
	"github.com/yourorg/settlement-switch/internal/errs"
	"github.com/yourorg/settlement-switch/internal/events"
	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/journal"
	"github.com/yourorg/settlement-switch/internal/model"
	tracing "github.com/yourorg/settlement-switch/internal/otel"
	"github.com/yourorg/settlement-switch/internal/registry"
	"github.com/yourorg/settlement-switch/internal/types"
	"github.com/yourorg/settlement-switch/internal/validation"
)

//go:generate mockgen -source=router.go -destination=mock/price_oracle.go

// PriceOracle converts gas and asset amounts to 8-decimal USD.
// *oracle.PriceOracle satisfies it.
type PriceOracle interface {
	AssetPrice(ctx context.Context, asset common.Address) (*uint256.Int, error)
	NativePrice(ctx context.Context, chain types.ChainID) (*uint256.Int, error)
	GasPrice(ctx context.Context, chain types.ChainID) (*uint256.Int, error)
	CalculateGasCost(ctx context.Context, chain types.ChainID, gasUnits uint64) (*uint256.Int, error)
}

// AdapterInfo describes one admitted provider
type AdapterInfo struct {
	ID     common.Address `json:"id"`
	Name   string         `json:"name"`
	Active bool           `json:"active"`
}

// Router is the composition root of route discovery and execution
type Router struct {
	authority common.Address

	mu          sync.RWMutex
	oracle      PriceOracle
	initialized bool
	registry    *registry.Registry
	supported   map[common.Address]bool

	totalTransfers *uint256.Int
	totalVolumeUSD *uint256.Int

	costModel  CostModel
	preference Preference
	maxRoutes  int
	validation validation.ValidationOptions

	sink    events.Sink
	journal journal.Journal
	signer  ReceiptSigner
	metrics *routerMetrics
	tracer  trace.Tracer
	log     logrus.FieldLogger
	now     func() time.Time
	newID   func() string
}

// New creates an uninitialized router administered by authority
func New(authority common.Address, opts ...Option) *Router {
	r := &Router{
		authority:      authority,
		registry:       registry.New(),
		supported:      make(map[common.Address]bool),
		totalTransfers: fixedpoint.Zero(),
		totalVolumeUSD: fixedpoint.Zero(),
		maxRoutes:      DefaultMaxRoutes,
		validation:     validation.DefaultValidationOptions(),
		sink:           events.Discard,
		now:            time.Now,
		newID:          newUUID,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = registerMetrics(nil)
	}
	if r.tracer == nil {
		r.tracer = tracing.Tracer()
	}
	if r.log == nil {
		r.log = logrus.WithField("component", "router")
	}
	return r
}

// Initialize binds the price oracle. It may be called once.
func (r *Router) Initialize(caller common.Address, oracle PriceOracle) error {
	const op = "router.Initialize"
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.authority {
		return errs.E(op, errs.ErrUnauthorized)
	}
	if r.initialized {
		return errs.E(op, errs.ErrAlreadyInitialized)
	}
	if oracle == nil {
		return errs.E(op, errs.ErrInvalidOracle)
	}
	r.oracle = oracle
	r.initialized = true
	r.log.Info("Router initialized")
	return nil
}

// AddBridgeAdapter admits a provider under id after probing it is active
func (r *Router) AddBridgeAdapter(caller, id common.Address, a adapter.BridgeAdapter) error {
	const op = "router.AddBridgeAdapter"
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.authority {
		return errs.E(op, errs.ErrUnauthorized)
	}
	if id == (common.Address{}) || a == nil {
		return errs.Ef(op, errs.ErrInvalidAddress, "provider id")
	}
	if r.registry.Contains(id) {
		return errs.Ef(op, errs.ErrAdapterExists, "provider %s", id.Hex())
	}
	info := a.Describe()
	if !info.Active {
		return errs.Ef(op, errs.ErrProviderUnsupported, "%s is not active", info.Name)
	}

	r.registry.Add(id, a)
	r.metrics.adapterCount.Set(float64(r.registry.Len()))
	r.log.WithFields(logrus.Fields{"provider": info.Name, "id": id.Hex()}).Info("Bridge adapter added")
	r.sink.Publish(model.NewEvent(model.EventAdapterAdded, map[string]string{
		"id":   id.Hex(),
		"name": info.Name,
	}))
	return nil
}

// RemoveBridgeAdapter withdraws an admitted provider
func (r *Router) RemoveBridgeAdapter(caller, id common.Address) error {
	const op = "router.RemoveBridgeAdapter"
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.authority {
		return errs.E(op, errs.ErrUnauthorized)
	}
	if !r.registry.Remove(id) {
		return errs.Ef(op, errs.ErrAdapterNotFound, "provider %s", id.Hex())
	}

	r.metrics.adapterCount.Set(float64(r.registry.Len()))
	r.log.WithField("id", id.Hex()).Info("Bridge adapter removed")
	r.sink.Publish(model.NewEvent(model.EventAdapterRemoved, map[string]string{"id": id.Hex()}))
	return nil
}

// SetAssetSupport enables or disables routing for asset
func (r *Router) SetAssetSupport(caller, asset common.Address, supported bool) error {
	const op = "router.SetAssetSupport"
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.authority {
		return errs.E(op, errs.ErrUnauthorized)
	}
	if asset == (common.Address{}) {
		return errs.Ef(op, errs.ErrInvalidAddress, "asset")
	}
	if supported {
		r.supported[asset] = true
	} else {
		delete(r.supported, asset)
	}

	r.sink.Publish(model.NewEvent(model.EventAssetSupportSet, map[string]string{
		"asset":     asset.Hex(),
		"supported": boolString(supported),
	}))
	return nil
}

// SupportedAssets lists the assets the router accepts, in address order
func (r *Router) SupportedAssets() []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]common.Address, 0, len(r.supported))
	for a := range r.supported {
		out = append(out, a)
	}
	sortAddresses(out)
	return out
}

// Authority returns the administrative identity
func (r *Router) Authority() common.Address {
	return r.authority
}

// Initialized reports whether the oracle is bound
func (r *Router) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}

// CostModel returns the ranking basis
func (r *Router) CostModel() CostModel {
	return r.costModel
}

// Preference returns the route preference
func (r *Router) Preference() Preference {
	return r.preference
}

// TotalTransfers returns the number of executed transfers
func (r *Router) TotalTransfers() *uint256.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return new(uint256.Int).Set(r.totalTransfers)
}

// TotalVolumeUSD returns the cumulative executed volume in 8-decimal USD
func (r *Router) TotalVolumeUSD() *uint256.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return new(uint256.Int).Set(r.totalVolumeUSD)
}

// Statistics returns both counters from one consistent snapshot
func (r *Router) Statistics() model.Statistics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return model.Statistics{
		TotalTransfers: new(uint256.Int).Set(r.totalTransfers),
		TotalVolumeUSD: new(uint256.Int).Set(r.totalVolumeUSD),
	}
}

// AdapterCount returns the number of admitted providers
func (r *Router) AdapterCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.registry.Len()
}

// Adapters describes the admitted providers in registration order
func (r *Router) Adapters() []AdapterInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]AdapterInfo, 0, r.registry.Len())
	r.registry.Each(func(id common.Address, a adapter.BridgeAdapter) bool {
		info := a.Describe()
		out = append(out, AdapterInfo{ID: id, Name: info.Name, Active: info.Active})
		return true
	})
	return out
}

// History returns every provider id ever admitted with its current flag
func (r *Router) History() []registry.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.registry.History()
}
