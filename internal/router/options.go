package router

import (
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/yourorg/settlement-switch/internal/events"
	"github.com/yourorg/settlement-switch/internal/journal"
	"github.com/yourorg/settlement-switch/internal/model"
	"github.com/yourorg/settlement-switch/internal/validation"
)

// DefaultMaxRoutes caps FindRoutes
const DefaultMaxRoutes = 5

// CostModel selects the comparison basis used to rank routes
type CostModel int

// Cost models
const (
	// GasOnly ranks by oracle-normalized gas cost; the fee is carried for
	// reporting only
	GasOnly CostModel = iota

	// GasPlusFee adds the fee, converted to USD via the asset price, to the
	// gas cost
	GasPlusFee
)

// String returns the config name of the cost model
func (c CostModel) String() string {
	if c == GasPlusFee {
		return "gas_plus_fee"
	}
	return "gas_only"
}

// ParseCostModel accepts "gas_only" or "gas_plus_fee"
func ParseCostModel(s string) (CostModel, bool) {
	switch s {
	case "", "gas_only":
		return GasOnly, true
	case "gas_plus_fee":
		return GasPlusFee, true
	}
	return GasOnly, false
}

// Preference orders routes that both qualify
type Preference int

// Route preferences
const (
	// PreferCheapest picks the lowest total cost
	PreferCheapest Preference = iota

	// PreferFastest picks the lowest estimated time; cost breaks ties
	PreferFastest
)

// String returns the config name of the preference
func (p Preference) String() string {
	if p == PreferFastest {
		return "fastest"
	}
	return "cheapest"
}

// ParsePreference accepts "cheapest" or "fastest"
func ParsePreference(s string) (Preference, bool) {
	switch s {
	case "", "cheapest":
		return PreferCheapest, true
	case "fastest":
		return PreferFastest, true
	}
	return PreferCheapest, false
}

// ReceiptSigner signs receipts before they are journaled
type ReceiptSigner interface {
	SignReceipt(r model.Receipt) (model.Receipt, error)
}

// Option configures a Router
type Option func(*Router)

// WithCostModel sets the ranking basis
func WithCostModel(c CostModel) Option {
	return func(r *Router) { r.costModel = c }
}

// WithPreference sets the route preference
func WithPreference(p Preference) Option {
	return func(r *Router) { r.preference = p }
}

// WithMaxRoutes caps the routes FindRoutes returns
func WithMaxRoutes(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.maxRoutes = n
		}
	}
}

// WithSink publishes change notifications to sink
func WithSink(sink events.Sink) Option {
	return func(r *Router) { r.sink = sink }
}

// WithJournal records receipts of executed transfers
func WithJournal(j journal.Journal) Option {
	return func(r *Router) { r.journal = j }
}

// WithSigner signs receipts before journaling
func WithSigner(s ReceiptSigner) Option {
	return func(r *Router) { r.signer = s }
}

// WithRegisterer registers router metrics on reg
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Router) { r.metrics = registerMetrics(reg) }
}

// WithValidation sets the request validation options
func WithValidation(opts validation.ValidationOptions) Option {
	return func(r *Router) { r.validation = opts }
}

// WithTracer overrides the tracer used for router spans
func WithTracer(t trace.Tracer) Option {
	return func(r *Router) { r.tracer = t }
}

// WithLogger sets the router logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Router) { r.log = l }
}

// WithClock overrides the clock used to stamp receipts
func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// WithIDGenerator overrides the receipt id source
func WithIDGenerator(next func() string) Option {
	return func(r *Router) { r.newID = next }
}

func newUUID() string {
	return uuid.NewString()
}
