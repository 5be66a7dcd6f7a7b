package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dotcommander/coinwatch/internal/models"
)

// The accounts table holds at most one row: the signed-in account.

// SaveAccount makes a the signed-in account, replacing any previous one.
func SaveAccount(db *sql.DB, a models.Account) error {
	if a.IsZero() {
		return models.ErrorUsernameRequired
	}
	err := Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO accounts (slot, id, username, signed_in_at)
			VALUES (1, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(slot) DO UPDATE SET
				id = excluded.id,
				username = excluded.username,
				signed_in_at = excluded.signed_in_at
		`, a.ID, a.Username)
		if err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.PersistenceSaveFailed.Wrap(err)
	}
	return nil
}

// GetAccount returns the signed-in account, or a *NotFoundError when nobody is
// signed in.
func GetAccount(db *sql.DB) (models.Account, error) {
	var a models.Account
	err := RetryWithBackoff(func() error {
		return db.QueryRow(`SELECT id, username FROM accounts WHERE slot = 1`).Scan(&a.ID, &a.Username)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, &NotFoundError{Entity: "account"}
	}
	if err != nil {
		return models.Account{}, models.PersistenceFetchFailed.Wrap(fmt.Errorf("failed to query account: %w", err))
	}
	return a, nil
}

// DeleteAccount signs out. It reports whether an account was signed in.
func DeleteAccount(db *sql.DB) (bool, error) {
	var deleted bool
	err := Transact(db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM accounts WHERE slot = 1`)
		if err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, models.PersistenceDeleteFailed.Wrap(err)
	}
	return deleted, nil
}
