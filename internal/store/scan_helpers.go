package store

import (
	"database/sql"
	"time"

	"github.com/dotcommander/coinwatch/internal/models"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanNullString converts sql.NullString to string (empty if NULL)
func scanNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// scanNullTime converts sql.NullTime to *time.Time (nil if NULL)
func scanNullTime(nt sql.NullTime) *time.Time {
	if nt.Valid {
		t := nt.Time.UTC()
		return &t
	}
	return nil
}

// nullIfEmpty stores "" as NULL.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullIfZero stores the zero time as NULL.
func nullIfZero(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

const coinColumns = `id, symbol, name, image, current_price, market_cap, market_cap_rank,
	total_volume, high_24h, low_24h, price_change_24h, price_change_percentage_24h,
	vs_currency, last_updated`

func scanCoin(row rowScanner) (*models.Coin, error) {
	var c models.Coin
	var lastUpdated sql.NullTime
	if err := row.Scan(
		&c.ID,
		&c.Symbol,
		&c.Name,
		&c.Image,
		&c.CurrentPrice,
		&c.MarketCap,
		&c.MarketCapRank,
		&c.TotalVolume,
		&c.High24h,
		&c.Low24h,
		&c.PriceChange24h,
		&c.PriceChangePercentage24h,
		&c.VsCurrency,
		&lastUpdated,
	); err != nil {
		return nil, err
	}
	if lastUpdated.Valid {
		c.LastUpdated = lastUpdated.Time.UTC()
	}
	return &c, nil
}

const alertColumns = `id, coin_id, target_price, direction, vs_currency, created_at, triggered_at`

func scanAlert(row rowScanner) (*models.Alert, error) {
	var a models.Alert
	var direction string
	var triggeredAt sql.NullTime
	if err := row.Scan(&a.ID, &a.CoinID, &a.TargetPrice, &direction, &a.VsCurrency, &a.CreatedAt, &triggeredAt); err != nil {
		return nil, err
	}
	a.Direction = models.AlertDirection(direction)
	a.CreatedAt = a.CreatedAt.UTC()
	a.TriggeredAt = scanNullTime(triggeredAt)
	return &a, nil
}
