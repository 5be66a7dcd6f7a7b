package store

import (
	"database/sql"
	"fmt"

	"github.com/dotcommander/coinwatch/internal/models"
)

// StatusCounts holds summary counts for everything coinwatch stores.
type StatusCounts struct {
	Coins     int         `json:"coins"`
	Favorites int         `json:"favorites"`
	Alerts    AlertCounts `json:"alerts"`
	Events    int         `json:"events"`
	SignedIn  bool        `json:"signed_in"`
}

// AlertCounts breaks down alerts by state.
type AlertCounts struct {
	Pending   int `json:"pending"`
	Triggered int `json:"triggered"`
}

// GetStatusCounts retrieves all counts in a single query with retry.
func GetStatusCounts(db *sql.DB) (*StatusCounts, error) {
	counts := &StatusCounts{}
	var accounts int
	err := RetryWithBackoff(func() error {
		return db.QueryRow(`
			SELECT
				(SELECT COUNT(*) FROM coins),
				(SELECT COUNT(*) FROM favorites),
				(SELECT COUNT(*) FROM alerts WHERE triggered_at IS NULL),
				(SELECT COUNT(*) FROM alerts WHERE triggered_at IS NOT NULL),
				(SELECT COUNT(*) FROM events),
				(SELECT COUNT(*) FROM accounts)
		`).Scan(
			&counts.Coins,
			&counts.Favorites,
			&counts.Alerts.Pending,
			&counts.Alerts.Triggered,
			&counts.Events,
			&accounts,
		)
	})
	if err != nil {
		return nil, models.PersistenceFetchFailed.Wrap(fmt.Errorf("failed to query status counts: %w", err))
	}
	counts.SignedIn = accounts > 0
	return counts, nil
}
