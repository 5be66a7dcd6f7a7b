package store

import (
	"database/sql"
	"fmt"

	"github.com/dotcommander/coinwatch/internal/models"
)

// AddFavorite adds coinID to the watchlist. Adding an existing favorite keeps
// its original CreatedAt.
func AddFavorite(db *sql.DB, coinID string) (*models.Favorite, error) {
	var fav models.Favorite
	err := Transact(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO favorites (coin_id, created_at)
			VALUES (?, CURRENT_TIMESTAMP)
		`, coinID); err != nil {
			return fmt.Errorf("failed to insert favorite: %w", err)
		}
		if err := tx.QueryRow(`
			SELECT coin_id, created_at FROM favorites WHERE coin_id = ?
		`, coinID).Scan(&fav.CoinID, &fav.CreatedAt); err != nil {
			return fmt.Errorf("failed to fetch favorite: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, models.PersistenceSaveFailed.Wrap(err)
	}
	fav.CreatedAt = fav.CreatedAt.UTC()
	return &fav, nil
}

// RemoveFavorite drops coinID from the watchlist.
func RemoveFavorite(db *sql.DB, coinID string) error {
	var n int64
	err := Transact(db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM favorites WHERE coin_id = ?`, coinID)
		if err != nil {
			return fmt.Errorf("failed to delete favorite: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return models.PersistenceDeleteFailed.Wrap(err)
	}
	if n == 0 {
		return &NotFoundError{Entity: "favorite", ID: coinID}
	}
	return nil
}

// ListFavorites returns the watchlist, oldest first.
func ListFavorites(db *sql.DB) ([]*models.Favorite, error) {
	var out []*models.Favorite
	err := RetryWithBackoff(func() error {
		rows, err := db.Query(`SELECT coin_id, created_at FROM favorites ORDER BY created_at ASC, coin_id ASC`)
		if err != nil {
			return fmt.Errorf("failed to list favorites: %w", err)
		}
		defer func() { _ = rows.Close() }()

		out = make([]*models.Favorite, 0)
		for rows.Next() {
			var f models.Favorite
			if err := rows.Scan(&f.CoinID, &f.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan favorite: %w", err)
			}
			f.CreatedAt = f.CreatedAt.UTC()
			out = append(out, &f)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, models.PersistenceFetchFailed.Wrap(err)
	}
	return out, nil
}

// TrackedCoinIDs returns the coins the watcher refreshes: favorites plus every
// coin with a pending alert, sorted and distinct.
func TrackedCoinIDs(db Querier) ([]string, error) {
	var ids []string
	err := RetryWithBackoff(func() error {
		var err error
		ids, err = queryStringColumn(db, `
			SELECT coin_id FROM favorites
			UNION
			SELECT coin_id FROM alerts WHERE triggered_at IS NULL
			ORDER BY 1
		`)
		return err
	})
	if err != nil {
		return nil, models.PersistenceFetchFailed.Wrap(fmt.Errorf("failed to query tracked coins: %w", err))
	}
	return ids, nil
}
