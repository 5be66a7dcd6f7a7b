// Package pricefeed fetches market snapshots from a CoinGecko-compatible API.
package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/dotcommander/coinwatch/internal/models"
	"github.com/dotcommander/coinwatch/pkg/cache"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultRetryMax     = 3
	defaultRetryWaitMin = 500 * time.Millisecond
	defaultRetryWaitMax = 5 * time.Second
	cacheEntries        = 64
	maxResponseBytes    = 5 * 1024 * 1024

	// APIKeyHeader carries the demo API key.
	APIKeyHeader = "x-cg-demo-api-key"
)

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RetryMax of zero selects the default; negative disables retries.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// CacheTTL of zero disables response caching.
	CacheTTL time.Duration
	Log      *slog.Logger
}

// StatusError is the cause attached to models.NetworkBadStatus.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return "unexpected status " + strconv.Itoa(e.Code) + " " + http.StatusText(e.Code)
}

// Client fetches market data. It is safe for concurrent use.
type Client struct {
	base     *url.URL
	baseErr  error
	apiKey   string
	cacheTTL time.Duration
	http     *retryablehttp.Client
	cache    *cache.Cache[[]models.Coin]
	log      *slog.Logger
}

// New creates a Client. An invalid BaseURL is reported by the first request.
func New(opts Options) *Client {
	if opts.Log == nil {
		opts.Log = slog.New(slog.DiscardHandler)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryMax == 0 {
		opts.RetryMax = defaultRetryMax
	}
	if opts.RetryWaitMin <= 0 {
		opts.RetryWaitMin = defaultRetryWaitMin
	}
	if opts.RetryWaitMax <= 0 {
		opts.RetryWaitMax = defaultRetryWaitMax
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient.Timeout = opts.Timeout
	rc.RetryMax = max(opts.RetryMax, 0)
	rc.RetryWaitMin = opts.RetryWaitMin
	rc.RetryWaitMax = max(opts.RetryWaitMax, opts.RetryWaitMin)
	rc.Logger = opts.Log
	// Hand the last response back after retries so the status can be classified.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	base, err := parseBaseURL(opts.BaseURL)

	return &Client{
		base:     base,
		baseErr:  err,
		apiKey:   strings.TrimSpace(opts.APIKey),
		cacheTTL: opts.CacheTTL,
		http:     rc,
		cache:    cache.New[[]models.Coin](cacheEntries),
		log:      opts.Log,
	}
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("base url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("base url has no host")
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

// MarketsURL builds the markets endpoint for vsCurrency and ids.
func (c *Client) MarketsURL(vsCurrency string, ids []string) (string, error) {
	if c.baseErr != nil {
		return "", models.NetworkInvalidURL.Wrap(c.baseErr)
	}
	u := *c.base
	u.Path += "/coins/markets"

	q := url.Values{}
	q.Set("vs_currency", vsCurrency)
	if len(ids) > 0 {
		q.Set("ids", strings.Join(ids, ","))
	}
	q.Set("order", "market_cap_desc")
	q.Set("per_page", "250")
	q.Set("page", "1")
	q.Set("sparkline", "false")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Markets returns snapshots for ids quoted in vsCurrency, ordered by market cap.
// With no ids it returns the top coins by market cap. Coins the API does not
// know are absent from the result.
func (c *Client) Markets(ctx context.Context, vsCurrency string, ids []string) ([]models.Coin, error) {
	vsCurrency = strings.ToLower(strings.TrimSpace(vsCurrency))
	if vsCurrency == "" {
		vsCurrency = "usd"
	}
	ids = normalizeIDs(ids)

	key := vsCurrency + "|" + strings.Join(ids, ",")
	if c.cacheTTL > 0 {
		if coins, ok := c.cache.Get(key); ok {
			c.log.Debug("Markets served from cache", "vs_currency", vsCurrency, "ids", len(ids))
			return slices.Clone(coins), nil
		}
	}

	endpoint, err := c.MarketsURL(vsCurrency, ids)
	if err != nil {
		return nil, err
	}

	coins, err := c.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	for i := range coins {
		coins[i].VsCurrency = vsCurrency
		coins[i].LastUpdated = coins[i].LastUpdated.UTC()
	}

	if c.cacheTTL > 0 {
		c.cache.Set(key, slices.Clone(coins), c.cacheTTL)
		c.log.Debug("Markets cached", "vs_currency", vsCurrency, "ttl", c.cacheTTL, "cache_entries", c.cache.Len())
	}
	return coins, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]models.Coin, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, models.NetworkInvalidURL.Wrap(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}

	// After the last retry the response is returned together with the retry
	// policy's error; a status is more useful to the caller than that error.
	if resp != nil && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		c.log.Warn("Markets request rejected", "status", resp.StatusCode, "duration", time.Since(started))
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, models.NetworkBadStatus.Wrap(&StatusError{Code: resp.StatusCode})
	}
	if err != nil {
		return nil, models.NetworkRequestFailed.Wrap(err)
	}

	c.log.Debug("Markets request finished", "status", resp.StatusCode, "duration", time.Since(started))

	var coins []models.Coin
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes))
	if err := dec.Decode(&coins); err != nil {
		return nil, models.NetworkDecodeFailed.Wrap(err)
	}
	if coins == nil {
		coins = []models.Coin{}
	}
	return coins, nil
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
