package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dotcommander/coinwatch/internal/models"
)

// DefaultCoinListLimit caps ListCoins when no limit is given.
const DefaultCoinListLimit = 100

// UpsertCoinsTx stores the latest snapshot of each coin.
func UpsertCoinsTx(tx *sql.Tx, coins []models.Coin) error {
	if len(coins) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`
		INSERT INTO coins (` + coinColumns + `, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			symbol = excluded.symbol,
			name = excluded.name,
			image = excluded.image,
			current_price = excluded.current_price,
			market_cap = excluded.market_cap,
			market_cap_rank = excluded.market_cap_rank,
			total_volume = excluded.total_volume,
			high_24h = excluded.high_24h,
			low_24h = excluded.low_24h,
			price_change_24h = excluded.price_change_24h,
			price_change_percentage_24h = excluded.price_change_percentage_24h,
			vs_currency = excluded.vs_currency,
			last_updated = excluded.last_updated,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare coin upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range coins {
		c := &coins[i]
		if c.ID == "" {
			return models.ErrorCoinIDRequired
		}
		if _, err := stmt.Exec(
			c.ID,
			c.Symbol,
			c.Name,
			c.Image,
			c.CurrentPrice,
			c.MarketCap,
			c.MarketCapRank,
			c.TotalVolume,
			c.High24h,
			c.Low24h,
			c.PriceChange24h,
			c.PriceChangePercentage24h,
			c.VsCurrency,
			nullIfZero(c.LastUpdated),
		); err != nil {
			return fmt.Errorf("failed to upsert coin %s: %w", c.ID, err)
		}
	}
	return nil
}

// UpsertCoins stores coins in a single transaction.
func UpsertCoins(db *sql.DB, coins []models.Coin) error {
	err := Transact(db, func(tx *sql.Tx) error {
		return UpsertCoinsTx(tx, coins)
	})
	if err != nil {
		return models.PersistenceSaveFailed.Wrap(err)
	}
	return nil
}

// GetCoin returns the stored snapshot for id.
func GetCoin(db *sql.DB, id string) (*models.Coin, error) {
	var coin *models.Coin
	err := RetryWithBackoff(func() error {
		c, err := scanCoin(db.QueryRow(`SELECT `+coinColumns+` FROM coins WHERE id = ?`, id))
		coin = c
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "coin", ID: id}
	}
	if err != nil {
		return nil, models.PersistenceFetchFailed.Wrap(fmt.Errorf("failed to query coin: %w", err))
	}
	return coin, nil
}

// ListCoins returns stored coins by market cap rank. Unranked coins sort last.
func ListCoins(db *sql.DB, limit int) ([]*models.Coin, error) {
	if limit <= 0 {
		limit = DefaultCoinListLimit
	}

	var out []*models.Coin
	err := RetryWithBackoff(func() error {
		rows, err := db.Query(`
			SELECT `+coinColumns+`
			FROM coins
			ORDER BY market_cap_rank = 0, market_cap_rank ASC, id ASC
			LIMIT ?
		`, limit)
		if err != nil {
			return fmt.Errorf("failed to list coins: %w", err)
		}
		defer func() { _ = rows.Close() }()

		out = make([]*models.Coin, 0)
		for rows.Next() {
			c, err := scanCoin(rows)
			if err != nil {
				return fmt.Errorf("failed to scan coin: %w", err)
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, models.PersistenceFetchFailed.Wrap(err)
	}
	return out, nil
}
