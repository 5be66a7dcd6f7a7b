package actions

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dotcommander/coinwatch/internal/models"
	"github.com/dotcommander/coinwatch/internal/store"
)

// setupTestDB creates a migrated database closed by t.Cleanup.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.InitDBWithPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// fakeFeed serves fixed prices and records each request.
type fakeFeed struct {
	mu     sync.Mutex
	coins  map[string]models.Coin
	err    error
	calls  int
	lastVs string
	ids    [][]string
}

func newFakeFeed(coins ...models.Coin) *fakeFeed {
	f := &fakeFeed{coins: make(map[string]models.Coin)}
	for _, c := range coins {
		f.coins[c.ID] = c
	}
	return f
}

func (f *fakeFeed) Markets(_ context.Context, vsCurrency string, ids []string) ([]models.Coin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastVs = vsCurrency
	f.ids = append(f.ids, ids)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Coin, 0, len(ids))
	for _, id := range ids {
		if c, ok := f.coins[id]; ok {
			c.VsCurrency = vsCurrency
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeFeed) setPrice(id string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.coins[id]
	c.CurrentPrice = price
	f.coins[id] = c
}
