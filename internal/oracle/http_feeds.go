package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/yourorg/settlement-switch/internal/fixedpoint"
)

// DefaultPriceAPI is the CoinGecko-compatible price endpoint used by HTTPFeeds
const DefaultPriceAPI = "https://api.coingecko.com/api/v3"

// HTTPFeeds reads USD prices from a CoinGecko-compatible simple-price API.
// Each feed handle is mapped to a coin id.
type HTTPFeeds struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter

	mu    sync.RWMutex
	coins map[common.Address]string
}

// HTTPFeedsOption configures HTTPFeeds
type HTTPFeedsOption func(*HTTPFeeds)

// WithAPIKey sends key as the x-cg-pro-api-key header
func WithAPIKey(key string) HTTPFeedsOption {
	return func(h *HTTPFeeds) { h.apiKey = key }
}

// WithRateLimit bounds outgoing requests per second
func WithRateLimit(perSecond float64, burst int) HTTPFeedsOption {
	return func(h *HTTPFeeds) { h.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithHTTPClient replaces the retrying client, mostly for tests
func WithHTTPClient(c *http.Client) HTTPFeedsOption {
	return func(h *HTTPFeeds) { h.client = c }
}

// NewHTTPFeeds creates a reader against baseURL
func NewHTTPFeeds(baseURL string, opts ...HTTPFeedsOption) *HTTPFeeds {
	if baseURL == "" {
		baseURL = DefaultPriceAPI
	}
	h := &HTTPFeeds{
		baseURL: baseURL,
		client:  newRetryClient().StandardClient(),
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		coins:   make(map[common.Address]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// newRetryClient creates a new HTTP client with retry capabilities
func newRetryClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 3 * time.Second
	c.Logger = nil
	return c
}

// Map binds a feed handle to a coin id such as "ethereum" or "usd-coin"
func (h *HTTPFeeds) Map(feed common.Address, coinID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.coins[feed] = coinID
}

type simplePrice struct {
	USD           json.Number `json:"usd"`
	LastUpdatedAt int64       `json:"last_updated_at"`
}

// LatestRound fetches the USD price of the coin mapped to feed
func (h *HTTPFeeds) LatestRound(ctx context.Context, feed common.Address) (Round, error) {
	h.mu.RLock()
	coinID, ok := h.coins[feed]
	h.mu.RUnlock()
	if !ok {
		return Round{}, fmt.Errorf("no coin mapped to feed %s", feed.Hex())
	}

	if err := h.limiter.Wait(ctx); err != nil {
		return Round{}, fmt.Errorf("rate limiter: %w", err)
	}

	query := url.Values{}
	query.Set("ids", coinID)
	query.Set("vs_currencies", "usd")
	query.Set("include_last_updated_at", "true")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/simple/price?"+query.Encode(), nil)
	if err != nil {
		return Round{}, fmt.Errorf("failed to create price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if h.apiKey != "" {
		req.Header.Set("x-cg-pro-api-key", h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return Round{}, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Round{}, fmt.Errorf("price API returned status %d", resp.StatusCode)
	}

	var body map[string]simplePrice
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return Round{}, fmt.Errorf("failed to decode price response: %w", err)
	}
	quote, ok := body[coinID]
	if !ok || quote.USD == "" {
		return Round{}, fmt.Errorf("price API has no USD quote for %s", coinID)
	}

	answer, err := fixedpoint.ParseUnits(quote.USD.String(), fixedpoint.USDDecimals)
	if err != nil {
		return Round{}, err
	}
	updatedAt := time.Now()
	if quote.LastUpdatedAt > 0 {
		updatedAt = time.Unix(quote.LastUpdatedAt, 0)
	}
	return Round{Answer: answer, UpdatedAt: updatedAt}, nil
}
