// Package modelstest provides model fixtures for tests.
package modelstest

import "github.com/dotcommander/coinwatch/internal/models"

// AccountOption overrides a field of the fixture built by [NewAccount].
type AccountOption func(*models.Account)

// WithID sets the account id.
func WithID(id string) AccountOption {
	return func(a *models.Account) {
		a.ID = id
	}
}

// WithUsername sets the account username.
func WithUsername(username string) AccountOption {
	return func(a *models.Account) {
		a.Username = username
	}
}

// NewAccount returns an account with id "test-id" and username "test-username",
// unless overridden by opts.
func NewAccount(opts ...AccountOption) models.Account {
	a := models.Account{
		ID:       "test-id",
		Username: "test-username",
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}
