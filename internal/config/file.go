package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"github.com/yourorg/settlement-switch/internal/circuitbreaker"
	"github.com/yourorg/settlement-switch/internal/events"
	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/oracle"
	"github.com/yourorg/settlement-switch/internal/router"
	"github.com/yourorg/settlement-switch/internal/types"
)

// Oracle feed sources
const (
	SourceStatic    = "static"
	SourceChainlink = "chainlink"
	SourceHTTP      = "http"
)

// Adapter kinds
const (
	KindReference = "reference"
	KindAcross    = "across"
	KindHop       = "hop"
	KindStargate  = "stargate"
)

// Downstream dispatch modes
const (
	DispatchNone   = "none"
	DispatchDryRun = "dry_run"
	DispatchRPC    = "rpc"
)

// Journal backends
const (
	JournalNone    = "none"
	JournalMemory  = "memory"
	JournalSQLite  = "sqlite"
	JournalLevelDB = "leveldb"
)

// File is the YAML bootstrap describing one deployment
type File struct {
	// Authority pins the operator address expected to administer the
	// deployment. Empty accepts any operator key.
	Authority string `yaml:"authority,omitempty"`

	Chains         []ChainSettings       `yaml:"chains,omitempty"`
	Oracle         OracleSettings        `yaml:"oracle"`
	Router         RouterSettings        `yaml:"router"`
	Adapters       []AdapterSettings     `yaml:"adapters"`
	CircuitBreaker BreakerSettings       `yaml:"circuit_breaker"`
	Journal        JournalSettings       `yaml:"journal"`
	Webhook        *events.WebhookConfig `yaml:"webhook,omitempty"`
}

// ChainSettings enables a settlement domain and names its RPC endpoint
type ChainSettings struct {
	types.ChainConfig `yaml:",inline"`

	Chain types.ChainID `yaml:"chain"`
}

// OracleSettings selects the feed source and lists the configured feeds
type OracleSettings struct {
	Source string `yaml:"source"`

	// RPCURL is the chain hosting the Chainlink aggregators
	RPCURL string `yaml:"rpc_url,omitempty"`

	// PriceAPI is the CoinGecko-compatible endpoint of the http source
	PriceAPI string `yaml:"price_api,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`

	// MaxPriceAge bounds feed staleness; zero disables the check
	MaxPriceAge time.Duration `yaml:"max_price_age"`

	Assets []FeedSettings   `yaml:"assets"`
	Native []NativeSettings `yaml:"native"`
}

// FeedSettings binds an asset to a feed handle
type FeedSettings struct {
	Asset  string `yaml:"asset"`
	Symbol string `yaml:"symbol,omitempty"`
	Feed   string `yaml:"feed"`

	// Price is a static USD answer such as "1.00". When empty the built-in
	// fallback for Symbol is used.
	Price string `yaml:"price,omitempty"`

	// CoinID is the http source identifier, e.g. "usd-coin"
	CoinID string `yaml:"coin_id,omitempty"`
}

// NativeSettings binds a chain's gas token to a feed and sets its gas price
type NativeSettings struct {
	Chain  types.ChainID `yaml:"chain"`
	Symbol string        `yaml:"symbol,omitempty"`
	Feed   string        `yaml:"feed"`
	Price  string        `yaml:"price,omitempty"`
	CoinID string        `yaml:"coin_id,omitempty"`

	GasPriceGwei string `yaml:"gas_price_gwei"`
}

// RouterSettings configures route discovery
type RouterSettings struct {
	Assets         []string `yaml:"assets"`
	CostModel      string   `yaml:"cost_model"`
	Preference     string   `yaml:"preference"`
	MaxRoutes      int      `yaml:"max_routes"`
	AllowSameChain bool     `yaml:"allow_same_chain"`

	// MaxAmount rejects larger requests; empty means unbounded
	MaxAmount string `yaml:"max_amount,omitempty"`
}

// AdapterSettings describes one bridge provider
type AdapterSettings struct {
	Kind string `yaml:"kind"`
	ID   string `yaml:"id"`

	// FeeBps overrides the default proportional fee of across and hop
	FeeBps *uint64 `yaml:"fee_bps,omitempty"`

	// Endpoint is the across spoke pool or the stargate router
	Endpoint string `yaml:"endpoint,omitempty"`

	Dispatch string `yaml:"dispatch,omitempty"`

	// Chain whose RPC endpoint rpc dispatch submits through
	Chain types.ChainID `yaml:"chain,omitempty"`

	Paused bool                   `yaml:"paused,omitempty"`
	Assets []AdapterAssetSettings `yaml:"assets"`
}

// AdapterAssetSettings admits one asset on a provider
type AdapterAssetSettings struct {
	Asset     string `yaml:"asset"`
	MinAmount string `yaml:"min_amount,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	AMM       string `yaml:"amm,omitempty"`
	PoolID    uint64 `yaml:"pool_id,omitempty"`
}

// BreakerSettings configures the per-provider circuit breaker
type BreakerSettings struct {
	circuitbreaker.Thresholds `yaml:",inline"`

	Enabled          bool          `yaml:"enabled"`
	ResetDelay       time.Duration `yaml:"reset_delay"`
	SuccessThreshold int           `yaml:"success_threshold"`
}

// JournalSettings selects where receipts are kept
type JournalSettings struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path,omitempty"`
}

// DefaultFile returns the settings applied before a file is read
func DefaultFile() *File {
	return &File{
		Oracle: OracleSettings{
			Source:      SourceStatic,
			MaxPriceAge: time.Hour,
		},
		Router: RouterSettings{
			CostModel:      router.GasOnly.String(),
			Preference:     router.PreferCheapest.String(),
			MaxRoutes:      router.DefaultMaxRoutes,
			AllowSameChain: true,
		},
		CircuitBreaker: BreakerSettings{
			Enabled:          true,
			Thresholds:       circuitbreaker.DefaultThresholds(),
			ResetDelay:       5 * time.Minute,
			SuccessThreshold: 1,
		},
		Journal: JournalSettings{Backend: JournalMemory},
	}
}

// LoadFile reads and validates the bootstrap file at path
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes and validates a bootstrap document
func ParseFile(data []byte) (*File, error) {
	f := DefaultFile()
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks every address, amount and enumerated value in the file
func (f *File) Validate() error {
	if f.Authority != "" {
		if _, err := ParseAddress(f.Authority); err != nil {
			return fmt.Errorf("authority: %w", err)
		}
	}

	rpc := make(map[types.ChainID]string, len(f.Chains))
	for i, c := range f.Chains {
		if c.Chain.IsZero() {
			return fmt.Errorf("chains[%d]: chain is required", i)
		}
		rpc[c.Chain] = c.RPCEndpoint
	}

	if err := f.Oracle.validate(); err != nil {
		return fmt.Errorf("oracle: %w", err)
	}
	if err := f.Router.validate(); err != nil {
		return fmt.Errorf("router: %w", err)
	}

	seen := make(map[common.Address]bool, len(f.Adapters))
	for i, a := range f.Adapters {
		id, err := a.validate(rpc)
		if err != nil {
			return fmt.Errorf("adapters[%d]: %w", i, err)
		}
		if seen[id] {
			return fmt.Errorf("adapters[%d]: duplicate id %s", i, id.Hex())
		}
		seen[id] = true
	}

	if f.CircuitBreaker.MaxFailures < 0 || f.CircuitBreaker.SuccessThreshold < 0 {
		return fmt.Errorf("circuit_breaker: thresholds must not be negative")
	}

	switch f.Journal.Backend {
	case "", JournalNone, JournalMemory:
	case JournalSQLite, JournalLevelDB:
		if f.Journal.Path == "" {
			return fmt.Errorf("journal: %s backend requires a path", f.Journal.Backend)
		}
	default:
		return fmt.Errorf("journal: unknown backend %q", f.Journal.Backend)
	}

	if f.Webhook != nil && f.Webhook.URL == "" {
		return fmt.Errorf("webhook: url is required")
	}
	return nil
}

// EnabledChains returns the enabled chains, or nil when none are listed
func (f *File) EnabledChains() map[types.ChainID]bool {
	if len(f.Chains) == 0 {
		return nil
	}
	out := make(map[types.ChainID]bool, len(f.Chains))
	for _, c := range f.Chains {
		if c.Enabled {
			out[c.Chain] = true
		}
	}
	return out
}

// RPCEndpoint returns the configured RPC endpoint of chain
func (f *File) RPCEndpoint(chain types.ChainID) string {
	for _, c := range f.Chains {
		if c.Chain == chain {
			return c.RPCEndpoint
		}
	}
	return ""
}

func (o OracleSettings) validate() error {
	switch o.Source {
	case SourceStatic, SourceHTTP:
	case SourceChainlink:
		if o.RPCURL == "" {
			return fmt.Errorf("chainlink source requires rpc_url")
		}
	default:
		return fmt.Errorf("unknown source %q", o.Source)
	}
	if o.MaxPriceAge < 0 {
		return fmt.Errorf("max_price_age must not be negative")
	}

	for i, a := range o.Assets {
		if _, err := ParseAddress(a.Asset); err != nil {
			return fmt.Errorf("assets[%d].asset: %w", i, err)
		}
		if err := validateFeed(o.Source, a.Feed, a.Price, a.Symbol, a.CoinID); err != nil {
			return fmt.Errorf("assets[%d]: %w", i, err)
		}
	}
	for i, n := range o.Native {
		if n.Chain.IsZero() {
			return fmt.Errorf("native[%d]: chain is required", i)
		}
		if err := validateFeed(o.Source, n.Feed, n.Price, n.Symbol, n.CoinID); err != nil {
			return fmt.Errorf("native[%d]: %w", i, err)
		}
		if n.GasPriceGwei != "" {
			if _, err := ParseGwei(n.GasPriceGwei); err != nil {
				return fmt.Errorf("native[%d].gas_price_gwei: %w", i, err)
			}
		}
	}
	return nil
}

func validateFeed(source, feed, price, symbol, coinID string) error {
	if _, err := ParseAddress(feed); err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	if _, err := StaticPrice(price, symbol); err != nil && source == SourceStatic {
		return err
	}
	if source == SourceHTTP && coinID == "" {
		return fmt.Errorf("http source requires coin_id")
	}
	return nil
}

func (r RouterSettings) validate() error {
	if _, ok := router.ParseCostModel(r.CostModel); !ok {
		return fmt.Errorf("unknown cost_model %q", r.CostModel)
	}
	if _, ok := router.ParsePreference(r.Preference); !ok {
		return fmt.Errorf("unknown preference %q", r.Preference)
	}
	if r.MaxRoutes < 0 {
		return fmt.Errorf("max_routes must not be negative")
	}
	for i, a := range r.Assets {
		if _, err := ParseAddress(a); err != nil {
			return fmt.Errorf("assets[%d]: %w", i, err)
		}
	}
	if r.MaxAmount != "" {
		if _, err := fixedpoint.ParseDecimal(r.MaxAmount); err != nil {
			return fmt.Errorf("max_amount: %w", err)
		}
	}
	return nil
}

func (a AdapterSettings) validate(rpc map[types.ChainID]string) (common.Address, error) {
	id, err := ParseAddress(a.ID)
	if err != nil {
		return common.Address{}, fmt.Errorf("id: %w", err)
	}

	switch a.Kind {
	case KindReference, KindHop:
		if a.Endpoint != "" {
			return id, fmt.Errorf("%s does not take an endpoint", a.Kind)
		}
	case KindAcross, KindStargate:
		if a.Endpoint != "" {
			if _, err := ParseAddress(a.Endpoint); err != nil {
				return id, fmt.Errorf("endpoint: %w", err)
			}
		}
	default:
		return id, fmt.Errorf("unknown kind %q", a.Kind)
	}

	if a.FeeBps != nil {
		if a.Kind != KindAcross && a.Kind != KindHop {
			return id, fmt.Errorf("%s has no adjustable fee", a.Kind)
		}
		if *a.FeeBps > fixedpoint.MaxFeeBps {
			return id, fmt.Errorf("fee_bps %d exceeds %d", *a.FeeBps, fixedpoint.MaxFeeBps)
		}
	}

	switch a.Dispatch {
	case "", DispatchNone, DispatchDryRun:
	case DispatchRPC:
		if rpc[a.Chain] == "" {
			return id, fmt.Errorf("rpc dispatch requires a chain with an rpc_endpoint")
		}
	default:
		return id, fmt.Errorf("unknown dispatch %q", a.Dispatch)
	}

	for i, asset := range a.Assets {
		if _, err := ParseAddress(asset.Asset); err != nil {
			return id, fmt.Errorf("assets[%d].asset: %w", i, err)
		}
		if asset.MinAmount != "" {
			if _, err := fixedpoint.ParseDecimal(asset.MinAmount); err != nil {
				return id, fmt.Errorf("assets[%d].min_amount: %w", i, err)
			}
		}
		for field, v := range map[string]string{"endpoint": asset.Endpoint, "amm": asset.AMM} {
			if v == "" {
				continue
			}
			if _, err := ParseAddress(v); err != nil {
				return id, fmt.Errorf("assets[%d].%s: %w", i, field, err)
			}
		}
	}
	return id, nil
}

// ParseAddress parses a non-zero hex address
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("zero address")
	}
	return addr, nil
}

// ParseOptionalAddress parses s, mapping the empty string to the zero address
func ParseOptionalAddress(s string) (common.Address, error) {
	if strings.TrimSpace(s) == "" {
		return common.Address{}, nil
	}
	return ParseAddress(s)
}

// ParseGwei converts a decimal gwei amount to wei
func ParseGwei(s string) (*uint256.Int, error) {
	return fixedpoint.ParseUnits(s, 9)
}

// StaticPrice resolves the 8-decimal USD answer of a static feed, falling
// back to the built-in price of symbol
func StaticPrice(price, symbol string) (*uint256.Int, error) {
	if price != "" {
		return fixedpoint.ParseUnits(price, fixedpoint.USDDecimals)
	}
	if p, ok := oracle.FallbackPrices()[strings.ToUpper(symbol)]; ok {
		return new(uint256.Int).Set(p), nil
	}
	return nil, fmt.Errorf("static source requires a price or a known symbol")
}
