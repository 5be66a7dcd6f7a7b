package actions

import (
	"context"
	"database/sql"
	"maps"
	"slices"
	"strings"

	"github.com/dotcommander/coinwatch/internal/models"
	"github.com/dotcommander/coinwatch/internal/store"
)

// MarketFeed is the price source RefreshMarkets reads from.
type MarketFeed interface {
	Markets(ctx context.Context, vsCurrency string, ids []string) ([]models.Coin, error)
}

// RefreshMarkets fetches snapshots for ids and stores them in one transaction.
// Nothing is written when the fetch fails.
func RefreshMarkets(ctx context.Context, db *sql.DB, feed MarketFeed, vsCurrency string, ids []string) ([]models.Coin, error) {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			clean = append(clean, id)
		}
	}

	coins, err := feed.Markets(ctx, vsCurrency, clean)
	if err != nil {
		return nil, err
	}
	if err := store.UpsertCoins(db, coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// RefreshTracked refreshes the favorites and the coins with pending alerts in
// vsCurrency and stores those snapshots. Coins with alerts quoted in another
// currency are also fetched in that currency so the alerts can be evaluated;
// those quotes are returned but not stored. It does not call the feed when
// nothing is tracked.
func RefreshTracked(ctx context.Context, db *sql.DB, feed MarketFeed, vsCurrency string) ([]models.Coin, error) {
	ids, err := store.TrackedCoinIDs(db)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	vsCurrency = normalizeCurrency(vsCurrency)
	if vsCurrency == "" {
		vsCurrency = "usd"
	}

	coins, err := RefreshMarkets(ctx, db, feed, vsCurrency, ids)
	if err != nil {
		return nil, err
	}

	byCurrency, err := store.PendingAlertCoins(db)
	if err != nil {
		return nil, err
	}
	for _, vs := range slices.Sorted(maps.Keys(byCurrency)) {
		if vs == vsCurrency {
			continue
		}
		quotes, err := feed.Markets(ctx, vs, byCurrency[vs])
		if err != nil {
			return nil, err
		}
		coins = append(coins, quotes...)
	}
	return coins, nil
}

func CoinGet(db *sql.DB, id string) (*models.Coin, error) {
	id, err := normalizeCoinID(id)
	if err != nil {
		return nil, err
	}
	return store.GetCoin(db, id)
}

func CoinList(db *sql.DB, limit int) ([]*models.Coin, error) {
	return store.ListCoins(db, limit)
}

func EventList(db *sql.DB, p store.ListEventsParams) ([]*models.Event, error) {
	return store.ListEvents(db, p)
}
