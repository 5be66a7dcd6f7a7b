package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/coinwatch/internal/actions"
	"github.com/dotcommander/coinwatch/internal/models"
)

func NewFavoriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorite",
		Aliases: []string{"fav"},
		Short:   "Manage the watchlist",
	}

	cmd.AddCommand(newFavoriteAddCmd())
	cmd.AddCommand(newFavoriteRemoveCmd())
	cmd.AddCommand(newFavoriteListCmd())
	return cmd
}

func newFavoriteAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <coin-id>",
		Short: "Add a coin to the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fav *models.Favorite
			if err := withDB(cmd, func(db *DB) error {
				f, err := actions.FavoriteAdd(db, args[0])
				if err != nil {
					return err
				}
				fav = f
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				Favorite *models.Favorite `json:"favorite"`
			}
			return printSuccess(cmd, resp{Favorite: fav})
		},
	}
}

func newFavoriteRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <coin-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a coin from the watchlist",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := withDB(cmd, func(db *DB) error {
				return actions.FavoriteRemove(db, args[0])
			}); err != nil {
				return err
			}

			type resp struct {
				Removed string `json:"removed"`
			}
			return printSuccess(cmd, resp{Removed: args[0]})
		},
	}
}

func newFavoriteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			var favs []*models.Favorite
			if err := withDB(cmd, func(db *DB) error {
				f, err := actions.FavoriteList(db)
				if err != nil {
					return err
				}
				favs = f
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				Count     int                `json:"count"`
				Favorites []*models.Favorite `json:"favorites"`
			}
			return printSuccess(cmd, resp{Count: len(favs), Favorites: favs})
		},
	}
}
