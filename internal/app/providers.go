package app

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/settlement-switch/internal/adapter"
	"github.com/yourorg/settlement-switch/internal/circuitbreaker"
	"github.com/yourorg/settlement-switch/internal/config"
	"github.com/yourorg/settlement-switch/internal/events"
	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/oracle"
)

// buildOracle selects the feed reader and registers every configured feed.
// Static prices back a live source whenever any can be resolved.
func buildOracle(ctx context.Context, authority common.Address, s config.OracleSettings, sink events.Sink) (*oracle.PriceOracle, error) {
	static := oracle.NewStaticFeeds()
	pinned := 0
	pin := func(feed common.Address, price, symbol string) {
		if p, err := config.StaticPrice(price, symbol); err == nil {
			static.Pin(feed, p)
			pinned++
		}
	}

	type binding struct {
		feed   common.Address
		coinID string
	}
	var bindings []binding
	for _, f := range s.Assets {
		feed, err := config.ParseAddress(f.Feed)
		if err != nil {
			return nil, err
		}
		pin(feed, f.Price, f.Symbol)
		bindings = append(bindings, binding{feed, f.CoinID})
	}
	for _, n := range s.Native {
		feed, err := config.ParseAddress(n.Feed)
		if err != nil {
			return nil, err
		}
		pin(feed, n.Price, n.Symbol)
		bindings = append(bindings, binding{feed, n.CoinID})
	}

	var reader oracle.FeedReader = static
	switch s.Source {
	case config.SourceChainlink:
		chainlink, err := oracle.DialChainlink(ctx, s.RPCURL)
		if err != nil {
			return nil, err
		}
		reader = withFallback(chainlink, static, pinned)
	case config.SourceHTTP:
		var opts []oracle.HTTPFeedsOption
		if s.APIKey != "" {
			opts = append(opts, oracle.WithAPIKey(s.APIKey))
		}
		feeds := oracle.NewHTTPFeeds(s.PriceAPI, opts...)
		for _, b := range bindings {
			if b.coinID != "" {
				feeds.Map(b.feed, b.coinID)
			}
		}
		reader = withFallback(feeds, static, pinned)
	}

	o := oracle.New(authority, reader).WithMaxPriceAge(s.MaxPriceAge).WithSink(sink)
	for _, f := range s.Assets {
		asset, _ := config.ParseAddress(f.Asset)
		feed, _ := config.ParseAddress(f.Feed)
		if err := o.SetAssetFeed(authority, asset, feed); err != nil {
			return nil, err
		}
	}
	for _, n := range s.Native {
		feed, _ := config.ParseAddress(n.Feed)
		if err := o.SetNativeFeed(authority, n.Chain, feed); err != nil {
			return nil, err
		}
		if n.GasPriceGwei == "" {
			continue
		}
		wei, err := config.ParseGwei(n.GasPriceGwei)
		if err != nil {
			return nil, err
		}
		if err := o.SetGasPrice(authority, n.Chain, wei); err != nil {
			return nil, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"source":        s.Source,
		"assets":        len(s.Assets),
		"native":        len(s.Native),
		"static_prices": pinned,
	}).Info("Price oracle configured")
	return o, nil
}

func withFallback(live oracle.FeedReader, static *oracle.StaticFeeds, pinned int) oracle.FeedReader {
	if pinned == 0 {
		return live
	}
	return oracle.FallbackReader{live, static}
}

// addProvider builds, configures and admits one bridge provider
func (a *App) addProvider(ctx context.Context, file *config.File, s config.AdapterSettings, key *ecdsa.PrivateKey) error {
	id, err := config.ParseAddress(s.ID)
	if err != nil {
		return err
	}
	endpoint, err := config.ParseOptionalAddress(s.Endpoint)
	if err != nil {
		return err
	}
	d, err := buildDispatcher(ctx, file, s, key)
	if err != nil {
		return err
	}

	var (
		provider adapter.BridgeAdapter
		admin    adapter.Admin
	)
	switch s.Kind {
	case config.KindReference:
		p := adapter.NewReference(a.Authority, d)
		provider, admin = p, p
	case config.KindAcross:
		p := adapter.NewAcross(a.Authority, endpoint, d)
		provider, admin = p, p
	case config.KindHop:
		p := adapter.NewHop(a.Authority, d)
		provider, admin = p, p
	case config.KindStargate:
		p := adapter.NewStargate(a.Authority, endpoint, d)
		provider, admin = p, p
	default:
		return fmt.Errorf("unknown kind %q", s.Kind)
	}

	if s.FeeBps != nil {
		if setter, ok := provider.(adapter.FeeSetter); ok {
			if err := setter.SetFeeBps(a.Authority, *s.FeeBps); err != nil {
				return err
			}
		}
	}
	for _, as := range s.Assets {
		asset, params, err := assetParams(as)
		if err != nil {
			return err
		}
		if err := admin.AdmitAsset(a.Authority, asset, params); err != nil {
			return err
		}
	}

	name := provider.Describe().Name
	if s.Paused {
		if err := admin.SetActive(a.Authority, false); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"provider": name, "id": id.Hex()}).Warn("Provider paused, not admitted")
		return nil
	}

	routed := provider
	var guard *circuitbreaker.Guard
	if file.CircuitBreaker.Enabled {
		guard = circuitbreaker.NewGuard(provider, a.newBreaker(file.CircuitBreaker, id, name))
		routed = guard
	}
	if err := a.Router.AddBridgeAdapter(a.Authority, id, routed); err != nil {
		return err
	}
	a.Providers = append(a.Providers, Provider{ID: id, Kind: s.Kind, Adapter: provider, Guard: guard})
	return nil
}

// newBreaker creates the breaker of one provider and exports its state
func (a *App) newBreaker(s config.BreakerSettings, id common.Address, name string) *circuitbreaker.CircuitBreaker {
	successes := s.SuccessThreshold
	if successes <= 0 {
		successes = 1
	}
	log := logrus.WithFields(logrus.Fields{"provider": name, "id": id.Hex()})
	breaker := circuitbreaker.New(s.Thresholds).
		WithResetDelay(s.ResetDelay).
		WithSuccessThreshold(successes).
		WithTripCallback(func(reason string) {
			log.WithField("reason", reason).Warn("Circuit breaker tripped")
		})

	a.Metrics.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "settlement_circuit_breaker_state",
			Help:        "Circuit breaker state per provider (0=closed, 1=open, 2=half-open)",
			ConstLabels: prometheus.Labels{"provider": name, "id": id.Hex()},
		},
		func() float64 { return float64(breaker.GetState()) },
	))
	return breaker
}

func buildDispatcher(ctx context.Context, file *config.File, s config.AdapterSettings, key *ecdsa.PrivateKey) (adapter.Dispatcher, error) {
	mode := s.Dispatch
	if mode == "" {
		mode = config.DispatchDryRun
		if s.Kind == config.KindReference {
			mode = config.DispatchNone
		}
	}

	var submitter adapter.Submitter
	switch mode {
	case config.DispatchNone:
		return adapter.NopDispatcher{}, nil
	case config.DispatchRPC:
		eth, err := adapter.DialEthSubmitter(ctx, file.RPCEndpoint(s.Chain), key)
		if err != nil {
			return nil, err
		}
		submitter = eth
	default:
		submitter = &adapter.RecordingSubmitter{}
	}
	d, err := adapter.NewABIDispatcher(submitter)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func assetParams(s config.AdapterAssetSettings) (common.Address, adapter.AssetParams, error) {
	asset, err := config.ParseAddress(s.Asset)
	if err != nil {
		return common.Address{}, adapter.AssetParams{}, err
	}
	params := adapter.AssetParams{PoolID: s.PoolID}
	if s.MinAmount != "" {
		if params.MinAmount, err = fixedpoint.ParseDecimal(s.MinAmount); err != nil {
			return asset, params, err
		}
	}
	if params.Endpoint, err = config.ParseOptionalAddress(s.Endpoint); err != nil {
		return asset, params, err
	}
	if params.AMM, err = config.ParseOptionalAddress(s.AMM); err != nil {
		return asset, params, err
	}
	return asset, params, nil
}
