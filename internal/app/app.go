// Package app assembles the oracle, the bridge providers, the router and
// their supporting services from configuration.
package app

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/settlement-switch/internal/adapter"
	"github.com/yourorg/settlement-switch/internal/circuitbreaker"
	"github.com/yourorg/settlement-switch/internal/config"
	"github.com/yourorg/settlement-switch/internal/events"
	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/journal"
	"github.com/yourorg/settlement-switch/internal/oracle"
	"github.com/yourorg/settlement-switch/internal/router"
	"github.com/yourorg/settlement-switch/internal/security"
	"github.com/yourorg/settlement-switch/internal/validation"
)

// Provider is one admitted bridge provider
type Provider struct {
	ID      common.Address
	Kind    string
	Adapter adapter.BridgeAdapter

	// Guard is nil when the circuit breaker is disabled
	Guard *circuitbreaker.Guard
}

// BreakerStatus is the circuit state of one provider
type BreakerStatus struct {
	ID       common.Address `json:"id"`
	Provider string         `json:"provider"`
	State    string         `json:"state"`
}

// App owns every long-lived component of the service
type App struct {
	Authority common.Address
	Router    *router.Router
	Oracle    *oracle.PriceOracle
	Journal   journal.Journal
	Signer    *security.ReceiptSigner
	Metrics   *prometheus.Registry
	Providers []Provider

	webhook *events.WebhookExporter
}

// New builds the service described by file. The operator key in cfg signs
// receipts and is the authority every bootstrap call is made with. A file
// naming an authority pins the expected operator address.
func New(ctx context.Context, cfg config.Config, file *config.File) (*App, error) {
	if err := file.Validate(); err != nil {
		return nil, err
	}

	key, err := operatorKey(cfg.OperatorKey)
	if err != nil {
		return nil, err
	}
	a := &App{
		Signer:  security.NewReceiptSigner(key),
		Metrics: prometheus.NewRegistry(),
	}
	a.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.Authority = a.Signer.Address()
	if file.Authority != "" {
		if a.Authority, err = config.ParseAddress(file.Authority); err != nil {
			return nil, err
		}
		if a.Authority != a.Signer.Address() {
			return nil, fmt.Errorf("authority %s does not match operator key %s", a.Authority.Hex(), a.Signer.Address().Hex())
		}
	}

	sink := a.buildSink(file)

	if a.Oracle, err = buildOracle(ctx, a.Authority, file.Oracle, sink); err != nil {
		a.Close()
		return nil, err
	}
	if a.Journal, err = openJournal(file.Journal); err != nil {
		a.Close()
		return nil, err
	}

	if a.Router, err = a.buildRouter(file, sink); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.Router.Initialize(a.Authority, a.Oracle); err != nil {
		a.Close()
		return nil, err
	}
	for _, s := range file.Adapters {
		if err := a.addProvider(ctx, file, s, key); err != nil {
			a.Close()
			return nil, fmt.Errorf("adapter %s: %w", s.ID, err)
		}
	}
	for _, asset := range file.Router.Assets {
		addr, _ := config.ParseAddress(asset)
		if err := a.Router.SetAssetSupport(a.Authority, addr, true); err != nil {
			a.Close()
			return nil, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"authority":  a.Authority.Hex(),
		"providers":  len(a.Providers),
		"assets":     len(file.Router.Assets),
		"cost_model": a.Router.CostModel().String(),
		"preference": a.Router.Preference().String(),
		"journal":    file.Journal.Backend,
	}).Info("Settlement switch assembled")
	return a, nil
}

// Breakers reports the circuit state of every guarded provider
func (a *App) Breakers() []BreakerStatus {
	out := make([]BreakerStatus, 0, len(a.Providers))
	for _, p := range a.Providers {
		if p.Guard == nil {
			continue
		}
		out = append(out, BreakerStatus{
			ID:       p.ID,
			Provider: p.Guard.Unwrap().Describe().Name,
			State:    p.Guard.Breaker().GetState().String(),
		})
	}
	return out
}

// ResetBreaker closes the circuit of provider id
func (a *App) ResetBreaker(id common.Address) bool {
	for _, p := range a.Providers {
		if p.ID == id && p.Guard != nil {
			p.Guard.Breaker().Reset()
			return true
		}
	}
	return false
}

// WebhookStatus reports the event exporter counters, or nil without a webhook
func (a *App) WebhookStatus() map[string]interface{} {
	if a.webhook == nil {
		return nil
	}
	return a.webhook.Status()
}

// Close flushes pending events and closes the journal
func (a *App) Close() error {
	if a.webhook != nil {
		a.webhook.Stop()
		a.webhook = nil
	}
	if a.Journal != nil {
		if err := a.Journal.Close(); err != nil {
			return err
		}
	}
	return nil
}

func operatorKey(hexKey string) (*ecdsa.PrivateKey, error) {
	if hexKey != "" {
		return security.ParseKey(hexKey)
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate operator key: %w", err)
	}
	logrus.Warn("OPERATOR_KEY not set, using an ephemeral key")
	return key, nil
}

func (a *App) buildSink(file *config.File) events.Sink {
	sinks := events.Fanout{events.NewLogSink(logrus.WithField("component", "events"))}
	if file.Webhook != nil {
		exporter, err := events.NewWebhookExporter(*file.Webhook)
		if err != nil {
			logrus.WithError(err).Warn("Failed to initialize webhook exporter")
		} else {
			a.webhook = exporter
			sinks = append(sinks, exporter)
		}
	}
	return sinks
}

func (a *App) buildRouter(file *config.File, sink events.Sink) (*router.Router, error) {
	costModel, _ := router.ParseCostModel(file.Router.CostModel)
	preference, _ := router.ParsePreference(file.Router.Preference)

	opts := validation.DefaultValidationOptions()
	opts.EnabledChains = file.EnabledChains()
	opts.AllowSameChain = file.Router.AllowSameChain
	if file.Router.MaxAmount != "" {
		max, err := fixedpoint.ParseDecimal(file.Router.MaxAmount)
		if err != nil {
			return nil, err
		}
		opts.MaxAmount = max
	}

	options := []router.Option{
		router.WithCostModel(costModel),
		router.WithPreference(preference),
		router.WithMaxRoutes(file.Router.MaxRoutes),
		router.WithSink(sink),
		router.WithSigner(a.Signer),
		router.WithRegisterer(a.Metrics),
		router.WithValidation(opts),
	}
	if a.Journal != nil {
		options = append(options, router.WithJournal(a.Journal))
	}
	return router.New(a.Authority, options...), nil
}

func openJournal(s config.JournalSettings) (journal.Journal, error) {
	switch s.Backend {
	case config.JournalNone:
		return nil, nil
	case config.JournalSQLite, config.JournalLevelDB:
		if dir := filepath.Dir(s.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create journal directory: %w", err)
			}
		}
		if s.Backend == config.JournalSQLite {
			j, err := journal.OpenSQLite(s.Path)
			if err != nil {
				return nil, err
			}
			return j, nil
		}
		j, err := journal.OpenLevelDB(s.Path)
		if err != nil {
			return nil, err
		}
		return j, nil
	default:
		return journal.NewMemory(), nil
	}
}
