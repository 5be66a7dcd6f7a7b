package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dotcommander/coinwatch/internal/app"
	"github.com/dotcommander/coinwatch/internal/events"
	"github.com/dotcommander/coinwatch/internal/models"
	"github.com/dotcommander/coinwatch/internal/output"
	"github.com/dotcommander/coinwatch/internal/watch"
)

func NewWatchCmd() *cobra.Command {
	var (
		interval time.Duration
		vs       string
		once     bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep tracked prices fresh and print alerts as they fire",
		Long: `Refresh favorites and coins with pending alerts on a timer, and print one
JSON line per alert that fires. SIGCONT (e.g. after fg) refreshes immediately.
With --once, runs a single cycle and prints the fired alerts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := app.EffectiveFeedSettings()
			if interval <= 0 {
				interval = settings.PollInterval
			}
			if vs == "" {
				vs = settings.VsCurrency
			}

			return withDB(cmd, func(db *DB) error {
				log := slog.Default().With("component", "watch")
				bus := events.NewBus(events.Options{Buffer: settings.EventBuffer, Log: log})
				w := &watch.Watcher{
					DB:         db,
					Feed:       newFeed(settings),
					Bus:        bus,
					Log:        log,
					Interval:   interval,
					VsCurrency: vs,
				}

				if once {
					fired, err := w.Cycle(cmdContext(cmd))
					if err != nil {
						return err
					}
					type resp struct {
						VsCurrency string                      `json:"vs_currency"`
						Count      int                         `json:"count"`
						Fired      []events.TargetPriceReached `json:"fired"`
					}
					return printSuccess(cmd, resp{VsCurrency: vs, Count: len(fired), Fired: fired})
				}

				ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return runWatch(ctx, cmd, w, bus)
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (default: poll_interval from config, 1m)")
	cmd.Flags().StringVar(&vs, "vs", "", "Quote currency (default: vs_currency from config, usd)")
	cmd.Flags().BoolVar(&once, "once", false, "Run one refresh cycle and exit")
	return cmd
}

// runWatch runs the watcher, the alert printer and the SIGCONT listener until
// ctx is cancelled or one of them fails.
func runWatch(ctx context.Context, cmd *cobra.Command, w *watch.Watcher, bus *events.Bus) error {
	// Subscribe before the watcher starts so the first cycle's alerts are not missed.
	fired := bus.Subscribe(models.EventKindTargetPriceReached)
	defer fired.Close()

	cont := make(chan os.Signal, 1)
	signal.Notify(cont, syscall.SIGCONT)
	defer signal.Stop(cont)

	cfg := outputConfig(cmd)
	cfg.Pretty = false

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(ctx)
	})
	g.Go(func() error {
		return printFired(ctx, cfg, fired)
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-cont:
				w.Activate()
			}
		}
	})
	return g.Wait()
}

func printFired(ctx context.Context, cfg output.Config, sub *events.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := output.PrintWith(cfg, e); err != nil {
				return err
			}
		}
	}
}
