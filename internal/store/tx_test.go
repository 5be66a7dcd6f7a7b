package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransact_RollsBackOnError(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	boom := errors.New("boom")
	err := Transact(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO favorites (coin_id) VALUES ('bitcoin')`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM favorites`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestTransactContext_CanceledContextSkipsWork(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := TransactContext(ctx, db, func(tx *sql.Tx) error {
		ran = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestTransactContext_Commits(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	err := TransactContext(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO favorites (coin_id) VALUES ('bitcoin')`)
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM favorites`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestNewAlertID_UniqueAndPrefixed(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		id := newAlertID()
		require.True(t, strings.HasPrefix(id, "alert_"), id)
		require.Len(t, strings.Split(id, "_"), 3, id)
		_, dup := seen[id]
		require.False(t, dup, id)
		seen[id] = struct{}{}
	}
}
