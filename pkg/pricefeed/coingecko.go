package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/go-nomad/internal/httpc"
	"github.com/teslashibe/go-nomad/internal/log"
)

const (
	coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

	// DefaultFetchTimeout bounds one rate lookup.
	DefaultFetchTimeout = 5 * time.Second
)

// coinIDs maps ticker symbols to CoinGecko coin identifiers.
var coinIDs = map[string]string{
	"SOL": "solana",
	"BTC": "bitcoin",
	"ETH": "ethereum",
}

// CoinGecko fetches spot prices from the CoinGecko simple-price API.
type CoinGecko struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// CoinGeckoOption configures a CoinGecko feed.
type CoinGeckoOption func(*CoinGecko)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) CoinGeckoOption {
	return func(c *CoinGecko) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) CoinGeckoOption {
	return func(c *CoinGecko) { c.http = client }
}

// WithFetchTimeout sets the per-lookup timeout.
func WithFetchTimeout(d time.Duration) CoinGeckoOption {
	return func(c *CoinGecko) { c.timeout = d }
}

// NewCoinGecko creates a CoinGecko-backed feed.
func NewCoinGecko(opts ...CoinGeckoOption) *CoinGecko {
	c := &CoinGecko{
		baseURL: coinGeckoBaseURL,
		http:    httpc.Client,
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rate implements Feed.
func (c *CoinGecko) Rate(ctx context.Context, base, quote string) (float64, error) {
	coinID, ok := coinIDs[strings.ToUpper(base)]
	if !ok {
		return 0, fmt.Errorf("%w: %s/%s", ErrUnsupportedPair, base, quote)
	}
	vs := strings.ToLower(quote)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", c.baseURL, coinID, vs)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("pricefeed: build request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("%w: status %d: %s", ErrFeedUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// Response shape: {"solana": {"usd": 142.35}}
	var prices map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return 0, fmt.Errorf("%w: decode: %v", ErrFeedUnavailable, err)
	}

	rate, ok := prices[coinID][vs]
	if !ok {
		return 0, fmt.Errorf("%w: %s/%s missing from response", ErrUnsupportedPair, base, quote)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("%w: %s/%s = %v", ErrInvalidRate, base, quote, rate)
	}

	log.Debug("fetched spot rate",
		"pair", base+"/"+quote, "rate", rate,
		"latency_ms", time.Since(start).Milliseconds())
	return rate, nil
}
