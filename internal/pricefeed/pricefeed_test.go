package pricefeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/coinwatch/internal/models"
)

const marketsBody = `[
  {
    "id": "bitcoin",
    "symbol": "btc",
    "name": "Bitcoin",
    "image": "https://example.test/btc.png",
    "current_price": 65000.5,
    "market_cap": 1280000000000,
    "market_cap_rank": 1,
    "total_volume": 35000000000,
    "high_24h": 66000,
    "low_24h": 64000,
    "price_change_24h": 500.25,
    "price_change_percentage_24h": 0.77,
    "last_updated": "2026-03-01T12:00:00.000Z"
  },
  {
    "id": "ethereum",
    "symbol": "eth",
    "name": "Ethereum",
    "current_price": 3500,
    "market_cap_rank": 2,
    "last_updated": null
  }
]`

func testClient(t *testing.T, baseURL string, opts Options) *Client {
	t.Helper()
	opts.BaseURL = baseURL
	opts.RetryWaitMin = time.Millisecond
	opts.RetryWaitMax = 2 * time.Millisecond
	return New(opts)
}

func TestMarkets_DecodesAndSendsQuery(t *testing.T) {
	var gotPath, gotKey string
	var gotQuery map[string][]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotKey = r.Header.Get(APIKeyHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(marketsBody))
	}))
	defer ts.Close()

	c := testClient(t, ts.URL+"/api/v3/", Options{APIKey: "demo-key"})
	coins, err := c.Markets(context.Background(), "USD", []string{"ethereum", " Bitcoin ", "ethereum"})
	require.NoError(t, err)

	assert.Equal(t, "/api/v3/coins/markets", gotPath)
	assert.Equal(t, "usd", gotQuery["vs_currency"][0])
	assert.Equal(t, "bitcoin,ethereum", gotQuery["ids"][0])
	assert.Equal(t, "market_cap_desc", gotQuery["order"][0])
	assert.Equal(t, "250", gotQuery["per_page"][0])
	assert.Equal(t, "1", gotQuery["page"][0])
	assert.Equal(t, "false", gotQuery["sparkline"][0])
	assert.Equal(t, "demo-key", gotKey)

	require.Len(t, coins, 2)
	btc := coins[0]
	assert.Equal(t, "bitcoin", btc.ID)
	assert.Equal(t, "btc", btc.Symbol)
	assert.Equal(t, 65000.5, btc.CurrentPrice)
	assert.Equal(t, 1, btc.MarketCapRank)
	assert.Equal(t, 0.77, btc.PriceChangePercentage24h)
	assert.Equal(t, "usd", btc.VsCurrency)
	assert.True(t, btc.LastUpdated.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.True(t, coins[1].LastUpdated.IsZero())
}

func TestMarkets_NoIDsOmitsFilterAndKey(t *testing.T) {
	var hasIDs bool
	var key string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasIDs = r.URL.Query()["ids"]
		key = r.Header.Get(APIKeyHeader)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	coins, err := testClient(t, ts.URL, Options{}).Markets(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Empty(t, coins)
	assert.NotNil(t, coins)
	assert.False(t, hasIDs)
	assert.Empty(t, key)
}

func TestMarkets_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.test", "://bad", "http://"} {
		t.Run(raw, func(t *testing.T) {
			_, err := New(Options{BaseURL: raw}).Markets(context.Background(), "usd", []string{"bitcoin"})
			require.ErrorIs(t, err, models.NetworkInvalidURL)
			assert.Equal(t, "Invalid URL", models.Describe(err))
		})
	}
}

func TestMarkets_BadStatusAfterRetries(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := testClient(t, ts.URL, Options{RetryMax: 2}).Markets(context.Background(), "usd", []string{"bitcoin"})
	require.ErrorIs(t, err, models.NetworkBadStatus)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, "Unexpected response from the server", models.Describe(err))
}

func TestMarkets_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := testClient(t, ts.URL, Options{}).Markets(context.Background(), "usd", nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMarkets_RecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(marketsBody))
	}))
	defer ts.Close()

	coins, err := testClient(t, ts.URL, Options{}).Markets(context.Background(), "usd", []string{"bitcoin"})
	require.NoError(t, err)
	assert.Len(t, coins, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMarkets_DecodeFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"not a list"`))
	}))
	defer ts.Close()

	_, err := testClient(t, ts.URL, Options{}).Markets(context.Background(), "usd", nil)
	require.ErrorIs(t, err, models.NetworkDecodeFailed)
}

func TestMarkets_RequestFailed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := testClient(t, url, Options{RetryMax: -1}).Markets(context.Background(), "usd", nil)
	require.ErrorIs(t, err, models.NetworkRequestFailed)
	assert.Equal(t, "Failed to reach the server", models.Describe(err))
}

func TestMarkets_CancelledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(t, ts.URL, Options{}).Markets(ctx, "usd", nil)
	require.ErrorIs(t, err, models.NetworkRequestFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMarkets_CachesPerQuery(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(marketsBody))
	}))
	defer ts.Close()

	c := testClient(t, ts.URL, Options{CacheTTL: time.Minute})
	ctx := context.Background()

	first, err := c.Markets(ctx, "usd", []string{"bitcoin", "ethereum"})
	require.NoError(t, err)
	first[0].CurrentPrice = -1

	second, err := c.Markets(ctx, "USD", []string{"ethereum", "bitcoin"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 65000.5, second[0].CurrentPrice, "cached slice must not alias the caller's copy")

	_, err = c.Markets(ctx, "eur", []string{"bitcoin", "ethereum"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, c.cache.Len(), "one entry per currency and id set")
}

func TestMarkets_NoCacheByDefault(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := testClient(t, ts.URL, Options{})
	for range 3 {
		_, err := c.Markets(context.Background(), "usd", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
	assert.Zero(t, c.cache.Len())
}

func TestStatusError(t *testing.T) {
	assert.Equal(t, "unexpected status 429 Too Many Requests", (&StatusError{Code: 429}).Error())
}
