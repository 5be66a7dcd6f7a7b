package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/coinwatch/internal/models"
	"github.com/dotcommander/coinwatch/internal/models/modelstest"
)

func TestAccount_SaveGetDelete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := GetAccount(db)
	require.ErrorIs(t, err, ErrNotFound)

	first := modelstest.NewAccount()
	require.NoError(t, SaveAccount(db, first))

	got, err := GetAccount(db)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := modelstest.NewAccount(modelstest.WithID("acc-2"), modelstest.WithUsername("hal"))
	require.NoError(t, SaveAccount(db, second))

	got, err = GetAccount(db)
	require.NoError(t, err)
	assert.Equal(t, second, got, "saving replaces the signed-in account")

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&rows))
	assert.Equal(t, 1, rows)

	deleted, err := DeleteAccount(db)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = DeleteAccount(db)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = GetAccount(db)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAccount_ClosedDatabaseIsPersistenceFailure(t *testing.T) {
	db, cleanup := setupTestDB(t)
	cleanup()

	_, err := GetAccount(db)
	require.ErrorIs(t, err, models.PersistenceFetchFailed)
	assert.Equal(t, "Failed to fetch models", models.Describe(err))

	err = SaveAccount(db, modelstest.NewAccount())
	require.ErrorIs(t, err, models.PersistenceSaveFailed)
	assert.Equal(t, "Failed to save model", models.Describe(err))

	_, err = DeleteAccount(db)
	require.ErrorIs(t, err, models.PersistenceDeleteFailed)
	assert.Equal(t, "Failed to delete model", models.Describe(err))
}

func TestSaveAccount_RejectsZeroAccount(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	require.ErrorIs(t, SaveAccount(db, models.Account{}), models.ErrorUsernameRequired)

	_, err := GetAccount(db)
	require.ErrorIs(t, err, ErrNotFound)
}
