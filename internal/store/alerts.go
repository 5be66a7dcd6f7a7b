package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dotcommander/coinwatch/internal/models"
)

// CreateAlertTx inserts a pending alert with its target quoted in vsCurrency
// and returns the stored row.
func CreateAlertTx(tx *sql.Tx, coinID string, target float64, direction models.AlertDirection, vsCurrency string) (*models.Alert, error) {
	id := newAlertID()
	if _, err := tx.Exec(`
		INSERT INTO alerts (id, coin_id, target_price, direction, vs_currency, created_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, id, coinID, target, string(direction), vsCurrency); err != nil {
		return nil, fmt.Errorf("failed to insert alert: %w", err)
	}

	a, err := scanAlert(tx.QueryRow(`SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created alert: %w", err)
	}
	return a, nil
}

// CreateAlert inserts a pending alert.
func CreateAlert(db *sql.DB, coinID string, target float64, direction models.AlertDirection, vsCurrency string) (*models.Alert, error) {
	var alert *models.Alert
	err := Transact(db, func(tx *sql.Tx) error {
		a, err := CreateAlertTx(tx, coinID, target, direction, vsCurrency)
		if err != nil {
			return err
		}
		alert = a
		return nil
	})
	if err != nil {
		return nil, models.PersistenceSaveFailed.Wrap(err)
	}
	return alert, nil
}

// GetAlert retrieves an alert by ID.
func GetAlert(db *sql.DB, id string) (*models.Alert, error) {
	var alert *models.Alert
	err := RetryWithBackoff(func() error {
		a, err := scanAlert(db.QueryRow(`SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id))
		alert = a
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "alert", ID: id}
	}
	if err != nil {
		return nil, models.PersistenceFetchFailed.Wrap(fmt.Errorf("failed to query alert: %w", err))
	}
	return alert, nil
}

func queryAlerts(q Querier, query string, args ...any) ([]*models.Alert, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*models.Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListAlerts returns alerts oldest first. Triggered alerts are included only
// when includeTriggered is set.
func ListAlerts(db *sql.DB, includeTriggered bool) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts`
	if !includeTriggered {
		query += ` WHERE triggered_at IS NULL`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	var out []*models.Alert
	err := RetryWithBackoff(func() error {
		var err error
		out, err = queryAlerts(db, query)
		return err
	})
	if err != nil {
		return nil, models.PersistenceFetchFailed.Wrap(err)
	}
	return out, nil
}

// ListPendingAlertsTx returns every untriggered alert inside tx.
func ListPendingAlertsTx(tx *sql.Tx) ([]*models.Alert, error) {
	return queryAlerts(tx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE triggered_at IS NULL
		ORDER BY created_at ASC, id ASC
	`)
}

// PendingAlertCoins groups the coins with pending alerts by the currency their
// targets are quoted in. Coin ids are sorted and distinct per currency.
func PendingAlertCoins(db Querier) (map[string][]string, error) {
	out := make(map[string][]string)
	err := RetryWithBackoff(func() error {
		clear(out)
		rows, err := db.Query(`
			SELECT DISTINCT vs_currency, coin_id
			FROM alerts
			WHERE triggered_at IS NULL
			ORDER BY vs_currency, coin_id
		`)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var vs, coinID string
			if err := rows.Scan(&vs, &coinID); err != nil {
				return err
			}
			out[vs] = append(out[vs], coinID)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, models.PersistenceFetchFailed.Wrap(fmt.Errorf("failed to query alert currencies: %w", err))
	}
	return out, nil
}

// DeleteAlert removes an alert, triggered or not.
func DeleteAlert(db *sql.DB, id string) error {
	var n int64
	err := Transact(db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM alerts WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete alert: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return models.PersistenceDeleteFailed.Wrap(err)
	}
	if n == 0 {
		return &NotFoundError{Entity: "alert", ID: id}
	}
	return nil
}

// MarkAlertTriggeredTx stamps triggered_at on a pending alert. It returns false
// when the alert was already triggered or no longer exists, so an alert fires
// at most once even with concurrent watchers.
func MarkAlertTriggeredTx(tx *sql.Tx, id string, at time.Time) (bool, error) {
	res, err := tx.Exec(`
		UPDATE alerts SET triggered_at = ?
		WHERE id = ? AND triggered_at IS NULL
	`, at.UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to mark alert triggered: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}
