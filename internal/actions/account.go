package actions

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/dotcommander/coinwatch/internal/models"
	"github.com/dotcommander/coinwatch/internal/store"
)

// AccountLogin signs in as username, replacing any signed-in account.
// An empty id mints a new random one.
func AccountLogin(db *sql.DB, username, id string) (models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Account{}, models.ErrorUsernameRequired
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}

	account := models.Account{ID: id, Username: username}
	if err := store.SaveAccount(db, account); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// AccountCurrent returns the signed-in account or models.ErrorNotSignedIn.
func AccountCurrent(db *sql.DB) (models.Account, error) {
	account, err := store.GetAccount(db)
	if errors.Is(err, store.ErrNotFound) {
		return models.Account{}, models.ErrorNotSignedIn
	}
	return account, err
}

// AccountLogout signs out the current account and returns it.
func AccountLogout(db *sql.DB) (models.Account, error) {
	account, err := AccountCurrent(db)
	if err != nil {
		return models.Account{}, err
	}
	if _, err := store.DeleteAccount(db); err != nil {
		return models.Account{}, err
	}
	return account, nil
}
