package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dotcommander/coinwatch/internal/actions"
	"github.com/dotcommander/coinwatch/internal/app"
	"github.com/dotcommander/coinwatch/internal/models"
)

// directionValue parses --direction at flag time so a typo fails before the DB is opened.
type directionValue models.AlertDirection

func (d *directionValue) String() string { return string(*d) }

func (d *directionValue) Set(s string) error {
	v := models.AlertDirection(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return models.ErrorInvalidAlertDirection
	}
	*d = directionValue(v)
	return nil
}

func (d *directionValue) Type() string { return "direction" }

var _ pflag.Value = (*directionValue)(nil)

func NewAlertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alert",
		Short: "Manage target-price alerts",
	}

	cmd.AddCommand(newAlertAddCmd())
	cmd.AddCommand(newAlertListCmd())
	cmd.AddCommand(newAlertGetCmd())
	cmd.AddCommand(newAlertDeleteCmd())
	return cmd
}

func newAlertAddCmd() *cobra.Command {
	var (
		coinID    string
		target    float64
		vs        string
		direction = directionValue(models.AlertDirectionAbove)
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an alert that fires once when the price reaches the target",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(coinID) == "" {
				return cmdErr(cmd, models.ErrorCoinIDRequired)
			}
			if !(target > 0) {
				return cmdErr(cmd, models.ErrorInvalidTargetPrice)
			}

			if vs == "" {
				vs = app.EffectiveFeedSettings().VsCurrency
			}

			var alert *models.Alert
			if err := withDB(cmd, func(db *DB) error {
				a, err := actions.AlertCreate(db, coinID, target, models.AlertDirection(direction), vs)
				if err != nil {
					return err
				}
				alert = a
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				Alert *models.Alert `json:"alert"`
			}
			return printSuccess(cmd, resp{Alert: alert})
		},
	}

	cmd.Flags().StringVar(&coinID, "coin", "", "Coin id (required)")
	cmd.Flags().Float64Var(&target, "target", 0, "Target price in the quote currency (required)")
	cmd.Flags().StringVar(&vs, "vs", "", "Currency the target is quoted in (default: vs_currency from config, usd)")
	cmd.Flags().Var(&direction, "direction", "Fire when the price crosses the target, one of: above|below")
	return cmd
}

func newAlertListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var alerts []*models.Alert
			if err := withDB(cmd, func(db *DB) error {
				a, err := actions.AlertList(db, all)
				if err != nil {
					return err
				}
				alerts = a
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				Count  int             `json:"count"`
				Alerts []*models.Alert `json:"alerts"`
			}
			return printSuccess(cmd, resp{Count: len(alerts), Alerts: alerts})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include triggered alerts")
	return cmd
}

func newAlertGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var alert *models.Alert
			if err := withDB(cmd, func(db *DB) error {
				a, err := actions.AlertGet(db, args[0])
				if err != nil {
					return err
				}
				alert = a
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				Alert *models.Alert `json:"alert"`
			}
			return printSuccess(cmd, resp{Alert: alert})
		},
	}
}

func newAlertDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an alert",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := withDB(cmd, func(db *DB) error {
				return actions.AlertDelete(db, args[0])
			}); err != nil {
				return err
			}

			type resp struct {
				Deleted string `json:"deleted"`
			}
			return printSuccess(cmd, resp{Deleted: args[0]})
		},
	}
}
