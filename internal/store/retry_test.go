package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  string
		want bool
	}{
		{"database is locked", true},
		{"sqlite: step: SQLITE_BUSY", true},
		{"UNIQUE constraint failed: alerts.id", false},
		{"CHECK constraint failed: target_price > 0", false},
		{"no such table: coins", false},
	}
	for _, tc := range tests {
		t.Run(tc.err, func(t *testing.T) {
			assert.Equal(t, tc.want, isRetryableError(errors.New(tc.err)))
		})
	}
}

func TestRetryWithBackoff_RetriesTransientErrors(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(func() error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_StopsOnPermanentErrors(t *testing.T) {
	attempts := 0
	sentinel := errors.New("UNIQUE constraint failed: favorites.coin_id")
	err := RetryWithBackoff(func() error {
		attempts++
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, attempts)
}
