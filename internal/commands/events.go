package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/coinwatch/internal/actions"
	"github.com/dotcommander/coinwatch/internal/models"
	"github.com/dotcommander/coinwatch/internal/output"
	"github.com/dotcommander/coinwatch/internal/store"
)

func NewEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the local event log",
	}

	cmd.AddCommand(newEventsListCmd())
	cmd.AddCommand(newEventsTailCmd())
	return cmd
}

func parseEventKind(kind string) (models.EventKind, error) {
	if kind == "" {
		return "", nil
	}
	k := models.EventKind(kind)
	if !k.Valid() {
		return "", fmt.Errorf("unknown event kind %q (valid: %v)", kind, models.EventKinds())
	}
	return k, nil
}

func newEventsListCmd() *cobra.Command {
	var (
		kind   string
		coinID string
		limit  int
		since  int64
		asc    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseEventKind(kind)
			if err != nil {
				return cmdErr(cmd, err)
			}

			var list []*models.Event
			if err := withDB(cmd, func(db *DB) error {
				ev, err := actions.EventList(db, store.ListEventsParams{
					Kind:    k,
					CoinID:  coinID,
					SinceID: since,
					Limit:   limit,
					Desc:    !asc,
				})
				if err != nil {
					return err
				}
				list = ev
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				Kind   models.EventKind `json:"kind,omitempty"`
				Coin   string           `json:"coin_id,omitempty"`
				Since  int64            `json:"since_id,omitempty"`
				Count  int              `json:"count"`
				Events []*models.Event  `json:"events"`
			}
			return printSuccess(cmd, resp{Kind: k, Coin: coinID, Since: since, Count: len(list), Events: list})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Filter by kind, one of: target_price_reached|app_did_become_active")
	cmd.Flags().StringVar(&coinID, "coin", "", "Filter by coin id")
	cmd.Flags().IntVar(&limit, "limit", 50, "Max events (<= 1000)")
	cmd.Flags().Int64Var(&since, "since-id", 0, "Only events with id > since-id")
	cmd.Flags().BoolVar(&asc, "asc", false, "Oldest first")
	return cmd
}

func newEventsTailCmd() *cobra.Command {
	var (
		kind     string
		coinID   string
		limit    int
		since    int64
		interval time.Duration
		once     bool
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Poll the event log and print new events as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseEventKind(kind)
			if err != nil {
				return cmdErr(cmd, err)
			}
			if interval <= 0 {
				return cmdErr(cmd, fmt.Errorf("--interval must be positive"))
			}

			ctx := cmdContext(cmd)
			cfg := outputConfig(cmd)
			cfg.Pretty = false

			for {
				var batch []*models.Event
				if err := withDB(cmd, func(db *DB) error {
					ev, err := actions.EventList(db, store.ListEventsParams{
						Kind:    k,
						CoinID:  coinID,
						SinceID: since,
						Limit:   limit,
					})
					if err != nil {
						return err
					}
					batch = ev
					return nil
				}); err != nil {
					return err
				}

				for _, e := range batch {
					if e.ID > since {
						since = e.ID
					}
					if err := output.PrintWith(cfg, e); err != nil {
						return err
					}
				}
				if once {
					return nil
				}

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(interval):
				}
			}
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Filter by kind, one of: target_price_reached|app_did_become_active")
	cmd.Flags().StringVar(&coinID, "coin", "", "Filter by coin id")
	cmd.Flags().IntVar(&limit, "limit", 50, "Max events per poll (<= 1000)")
	cmd.Flags().Int64Var(&since, "since-id", 0, "Only events with id > since-id")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Poll interval")
	cmd.Flags().BoolVar(&once, "once", false, "Print what is there and exit")
	return cmd
}
