package actions

import (
	"database/sql"
	"strings"

	"github.com/dotcommander/coinwatch/internal/models"
	"github.com/dotcommander/coinwatch/internal/store"
)

// normalizeCoinID lowercases and trims a provider coin id.
func normalizeCoinID(id string) (string, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return "", models.ErrorCoinIDRequired
	}
	return id, nil
}

func FavoriteAdd(db *sql.DB, coinID string) (*models.Favorite, error) {
	coinID, err := normalizeCoinID(coinID)
	if err != nil {
		return nil, err
	}
	return store.AddFavorite(db, coinID)
}

func FavoriteRemove(db *sql.DB, coinID string) error {
	coinID, err := normalizeCoinID(coinID)
	if err != nil {
		return err
	}
	return store.RemoveFavorite(db, coinID)
}

func FavoriteList(db *sql.DB) ([]*models.Favorite, error) {
	return store.ListFavorites(db)
}
