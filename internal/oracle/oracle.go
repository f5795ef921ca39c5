// Package oracle provides USD prices for settlement assets and native gas
// tokens, per-chain gas prices, and the normalization of gas estimates into
// 8-decimal USD.
package oracle

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/settlement-switch/internal/errs"
	"github.com/yourorg/settlement-switch/internal/events"
	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/model"
	"github.com/yourorg/settlement-switch/internal/types"
)

// DefaultMaxPriceAge is the oldest feed round accepted by default
const DefaultMaxPriceAge = time.Hour

// PriceOracle maps assets and chains to price feeds and stores gas prices.
// Feed tables are mutated only by the authority-gated setters.
type PriceOracle struct {
	// Identity allowed to mutate the feed tables
	authority common.Address

	// Source of feed rounds
	reader FeedReader

	// Rounds older than this are rejected; zero disables the check
	maxAge time.Duration

	// Clock used for staleness checks
	now func() time.Time

	// Receiver of change notifications
	sink events.Sink

	mu          sync.RWMutex
	assetFeeds  map[common.Address]common.Address
	nativeFeeds map[types.ChainID]common.Address
	gasPrices   map[types.ChainID]*uint256.Int
}

// New creates an oracle owned by authority that reads rounds from reader
func New(authority common.Address, reader FeedReader) *PriceOracle {
	if reader == nil {
		reader = NewStaticFeeds()
	}
	return &PriceOracle{
		authority:   authority,
		reader:      reader,
		maxAge:      DefaultMaxPriceAge,
		now:         time.Now,
		sink:        events.Discard,
		assetFeeds:  make(map[common.Address]common.Address),
		nativeFeeds: make(map[types.ChainID]common.Address),
		gasPrices:   make(map[types.ChainID]*uint256.Int),
	}
}

// WithMaxPriceAge sets the staleness bound and returns the oracle
func (o *PriceOracle) WithMaxPriceAge(age time.Duration) *PriceOracle {
	o.maxAge = age
	return o
}

// WithSink sets the receiver of change notifications and returns the oracle
func (o *PriceOracle) WithSink(sink events.Sink) *PriceOracle {
	if sink != nil {
		o.sink = sink
	}
	return o
}

// WithClock overrides the clock used for staleness checks
func (o *PriceOracle) WithClock(now func() time.Time) *PriceOracle {
	o.now = now
	return o
}

// Authority returns the identity allowed to mutate the oracle
func (o *PriceOracle) Authority() common.Address {
	return o.authority
}

// SetAssetFeed registers the USD price feed for an asset
func (o *PriceOracle) SetAssetFeed(caller, asset, feed common.Address) error {
	const op = "oracle.SetAssetFeed"
	if caller != o.authority {
		return errs.E(op, errs.ErrUnauthorized)
	}
	if asset == (common.Address{}) || feed == (common.Address{}) {
		return errs.E(op, errs.ErrInvalidAddress)
	}

	o.mu.Lock()
	o.assetFeeds[asset] = feed
	o.mu.Unlock()

	logrus.WithFields(logrus.Fields{"asset": asset.Hex(), "feed": feed.Hex()}).Debug("Asset price feed set")
	o.sink.Publish(model.NewEvent(model.EventAssetFeedSet, map[string]string{
		"asset": asset.Hex(),
		"feed":  feed.Hex(),
	}))
	return nil
}

// SetNativeFeed registers the USD price feed for a chain's native gas token
func (o *PriceOracle) SetNativeFeed(caller common.Address, chain types.ChainID, feed common.Address) error {
	const op = "oracle.SetNativeFeed"
	if caller != o.authority {
		return errs.E(op, errs.ErrUnauthorized)
	}
	if chain.IsZero() {
		return errs.E(op, errs.ErrInvalidChain)
	}
	if feed == (common.Address{}) {
		return errs.E(op, errs.ErrInvalidAddress)
	}

	o.mu.Lock()
	o.nativeFeeds[chain] = feed
	o.mu.Unlock()

	logrus.WithFields(logrus.Fields{"chain": chain.String(), "feed": feed.Hex()}).Debug("Native price feed set")
	o.sink.Publish(model.NewEvent(model.EventNativeFeedSet, map[string]string{
		"chain": strconv.FormatUint(uint64(chain), 10),
		"feed":  feed.Hex(),
	}))
	return nil
}

// SetGasPrice stores the gas price in wei for a chain
func (o *PriceOracle) SetGasPrice(caller common.Address, chain types.ChainID, wei *uint256.Int) error {
	const op = "oracle.SetGasPrice"
	if caller != o.authority {
		return errs.E(op, errs.ErrUnauthorized)
	}
	if chain.IsZero() {
		return errs.E(op, errs.ErrInvalidChain)
	}
	if wei == nil || wei.IsZero() {
		return errs.E(op, errs.ErrInvalidGasPrice)
	}

	o.mu.Lock()
	o.gasPrices[chain] = new(uint256.Int).Set(wei)
	o.mu.Unlock()

	logrus.WithFields(logrus.Fields{"chain": chain.String(), "wei": fixedpoint.String(wei)}).Debug("Gas price set")
	o.sink.Publish(model.NewEvent(model.EventGasPriceSet, map[string]string{
		"chain":     strconv.FormatUint(uint64(chain), 10),
		"gas_price": fixedpoint.String(wei),
	}))
	return nil
}

// AssetPrice returns the 8-decimal USD price of an asset
func (o *PriceOracle) AssetPrice(ctx context.Context, asset common.Address) (*uint256.Int, error) {
	const op = "oracle.AssetPrice"
	o.mu.RLock()
	feed, ok := o.assetFeeds[asset]
	o.mu.RUnlock()
	if !ok {
		return nil, errs.Ef(op, errs.ErrFeedNotConfigured, "asset %s", asset.Hex())
	}
	return o.readFeed(ctx, op, feed)
}

// NativePrice returns the 8-decimal USD price of a chain's native gas token
func (o *PriceOracle) NativePrice(ctx context.Context, chain types.ChainID) (*uint256.Int, error) {
	const op = "oracle.NativePrice"
	o.mu.RLock()
	feed, ok := o.nativeFeeds[chain]
	o.mu.RUnlock()
	if !ok {
		return nil, errs.Ef(op, errs.ErrFeedNotConfigured, "chain %s", chain)
	}
	return o.readFeed(ctx, op, feed)
}

// GasPrice returns the stored gas price in wei for a chain
func (o *PriceOracle) GasPrice(_ context.Context, chain types.ChainID) (*uint256.Int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	price, ok := o.gasPrices[chain]
	if !ok {
		return nil, errs.Ef("oracle.GasPrice", errs.ErrGasPriceNotConfigured, "chain %s", chain)
	}
	return new(uint256.Int).Set(price), nil
}

// CalculateGasCost converts a gas estimate on chain into 8-decimal USD:
// gasUnits * gasPrice * nativePrice / 10^18, saturating at the maximum value.
func (o *PriceOracle) CalculateGasCost(ctx context.Context, chain types.ChainID, gasUnits uint64) (*uint256.Int, error) {
	gasPrice, err := o.GasPrice(ctx, chain)
	if err != nil {
		return nil, err
	}
	nativePrice, err := o.NativePrice(ctx, chain)
	if err != nil {
		return nil, err
	}

	weiCost := fixedpoint.Mul(fixedpoint.New(gasUnits), gasPrice)
	return fixedpoint.MulDiv(weiCost, nativePrice, fixedpoint.Pow10(fixedpoint.WeiDecimals)), nil
}

// readFeed fetches a round and enforces the staleness bound
func (o *PriceOracle) readFeed(ctx context.Context, op string, feed common.Address) (*uint256.Int, error) {
	round, err := o.reader.LatestRound(ctx, feed)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	if round.Answer == nil || round.Answer.IsZero() {
		return nil, errs.Ef(op, errs.ErrInvalidPrice, "feed %s", feed.Hex())
	}
	if o.maxAge > 0 && o.now().Sub(round.UpdatedAt) > o.maxAge {
		return nil, errs.Ef(op, errs.ErrStalePrice, "feed %s updated %s", feed.Hex(), round.UpdatedAt.UTC().Format(time.RFC3339))
	}
	return new(uint256.Int).Set(round.Answer), nil
}
