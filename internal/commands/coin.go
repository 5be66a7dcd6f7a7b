package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/coinwatch/internal/actions"
	"github.com/dotcommander/coinwatch/internal/app"
	"github.com/dotcommander/coinwatch/internal/models"
)

func NewCoinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coin",
		Short: "Fetch and inspect market snapshots",
	}

	cmd.AddCommand(newCoinRefreshCmd())
	cmd.AddCommand(newCoinListCmd())
	cmd.AddCommand(newCoinGetCmd())
	return cmd
}

func newCoinRefreshCmd() *cobra.Command {
	var (
		ids []string
		vs  string
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch current prices and store them",
		Long:  "Fetch current prices and store them. Without --ids, fetches the top coins by market cap.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := app.EffectiveFeedSettings()
			if vs == "" {
				vs = settings.VsCurrency
			}
			feed := newFeed(settings)

			var coins []models.Coin
			if err := withDB(cmd, func(db *DB) error {
				c, err := actions.RefreshMarkets(cmdContext(cmd), db, feed, vs, ids)
				if err != nil {
					return err
				}
				coins = c
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				VsCurrency string        `json:"vs_currency"`
				Count      int           `json:"count"`
				Coins      []models.Coin `json:"coins"`
			}
			return printSuccess(cmd, resp{VsCurrency: vs, Count: len(coins), Coins: coins})
		},
	}

	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Coin ids to refresh, comma separated (e.g. bitcoin,ethereum)")
	cmd.Flags().StringVar(&vs, "vs", "", "Quote currency (default: vs_currency from config, usd)")
	return cmd
}

func newCoinListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored coins by market cap rank",
		RunE: func(cmd *cobra.Command, args []string) error {
			var coins []*models.Coin
			if err := withDB(cmd, func(db *DB) error {
				c, err := actions.CoinList(db, limit)
				if err != nil {
					return err
				}
				coins = c
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				Count int            `json:"count"`
				Coins []*models.Coin `json:"coins"`
			}
			return printSuccess(cmd, resp{Count: len(coins), Coins: coins})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Max coins")
	return cmd
}

func newCoinGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show the stored snapshot of one coin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var coin *models.Coin
			if err := withDB(cmd, func(db *DB) error {
				c, err := actions.CoinGet(db, args[0])
				if err != nil {
					return err
				}
				coin = c
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				Coin  *models.Coin `json:"coin"`
				Price string       `json:"price"`
			}
			return printSuccess(cmd, resp{Coin: coin, Price: actions.FormatPrice(coin.CurrentPrice, coin.VsCurrency)})
		},
	}
}
