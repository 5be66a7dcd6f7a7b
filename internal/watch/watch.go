// Package watch keeps tracked coin prices fresh and fires target-price alerts.
package watch

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/dotcommander/coinwatch/internal/actions"
	"github.com/dotcommander/coinwatch/internal/events"
	"github.com/dotcommander/coinwatch/internal/models"
)

// DefaultInterval between scheduled refreshes.
const DefaultInterval = time.Minute

// Watcher refreshes tracked coins on a timer and whenever an
// AppDidBecomeActive event is published, then publishes a TargetPriceReached
// for every alert the new prices trigger.
type Watcher struct {
	DB         *sql.DB
	Feed       actions.MarketFeed
	Bus        *events.Bus
	Log        *slog.Logger
	Interval   time.Duration
	VsCurrency string
}

func (w *Watcher) validate() error {
	switch {
	case w.DB == nil:
		return errors.New("watcher requires a database")
	case w.Feed == nil:
		return errors.New("watcher requires a price feed")
	case w.Bus == nil:
		return errors.New("watcher requires an event bus")
	}
	return nil
}

func (w *Watcher) logger() *slog.Logger {
	if w.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Log
}

// Activate requests an immediate refresh.
func (w *Watcher) Activate() {
	w.Bus.Publish(events.AppDidBecomeActive{At: time.Now().UTC()})
}

// Run loops until ctx is cancelled, then returns nil. A failing refresh is
// logged and retried on the next trigger.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.validate(); err != nil {
		return err
	}
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log := w.logger()

	sub := w.Bus.Subscribe(models.EventKindAppDidBecomeActive)
	defer sub.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("Watcher started", "interval", interval, "vs_currency", w.VsCurrency)
	w.Activate()

	for {
		select {
		case <-ctx.Done():
			log.Info("Watcher stopped")
			return nil
		case _, ok := <-sub.C():
			if !ok {
				return nil
			}
			w.runLogged(ctx, "activated")
		case <-ticker.C:
			w.runLogged(ctx, "tick")
		}
	}
}

func (w *Watcher) runLogged(ctx context.Context, trigger string) {
	fired, err := w.Cycle(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger().Error("Watch cycle failed",
			"trigger", trigger,
			"error", err,
			"description", models.Describe(err))
		return
	}
	w.logger().Debug("Watch cycle finished", "trigger", trigger, "fired", len(fired))
}

// Cycle refreshes tracked coins once, evaluates pending alerts and publishes
// each one that fired.
func (w *Watcher) Cycle(ctx context.Context) ([]events.TargetPriceReached, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}

	coins, err := actions.RefreshTracked(ctx, w.DB, w.Feed, w.VsCurrency)
	if err != nil {
		return nil, err
	}

	fired, err := actions.EvaluateAlerts(ctx, w.DB, coins)
	if err != nil {
		return nil, err
	}

	for _, n := range fired {
		w.logger().Info("Target price reached", "alert_id", n.AlertID, "coin_id", n.CoinID, "price", n.Price)
		w.Bus.Publish(n)
	}
	return fired, nil
}
