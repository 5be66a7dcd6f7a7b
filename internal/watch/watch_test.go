package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/coinwatch/internal/actions"
	"github.com/dotcommander/coinwatch/internal/events"
	"github.com/dotcommander/coinwatch/internal/models"
	"github.com/dotcommander/coinwatch/internal/store"
)

type stubFeed struct {
	mu     sync.Mutex
	prices map[string]float64
	err    error
	calls  int
}

func (f *stubFeed) Markets(_ context.Context, vs string, ids []string) ([]models.Coin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Coin, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.prices[id]; ok {
			out = append(out, models.Coin{ID: id, Symbol: id[:3], Name: id, CurrentPrice: p, VsCurrency: vs})
		}
	}
	return out, nil
}

func (f *stubFeed) set(id string, price float64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[id] = price
	f.err = err
}

func (f *stubFeed) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newWatcher(t *testing.T, feed *stubFeed) *Watcher {
	t.Helper()
	db, err := store.InitDBWithPath(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &Watcher{
		DB:         db,
		Feed:       feed,
		Bus:        events.NewBus(events.Options{}),
		Interval:   time.Hour,
		VsCurrency: "usd",
	}
}

func waitFired(t *testing.T, sub *events.Subscription) events.TargetPriceReached {
	t.Helper()
	select {
	case e := <-sub.C():
		n, ok := e.(events.TargetPriceReached)
		require.True(t, ok)
		return n
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for TargetPriceReached")
		return events.TargetPriceReached{}
	}
}

func TestCycle_PublishesFiredAlerts(t *testing.T) {
	feed := &stubFeed{prices: map[string]float64{"bitcoin": 71000}}
	w := newWatcher(t, feed)

	a, err := actions.AlertCreate(w.DB, "bitcoin", 70000, models.AlertDirectionAbove, "usd")
	require.NoError(t, err)

	sub := w.Bus.Subscribe(models.EventKindTargetPriceReached)
	defer sub.Close()

	fired, err := w.Cycle(context.Background())
	require.NoError(t, err)
	require.Len(t, fired, 1)

	n := waitFired(t, sub)
	assert.Equal(t, a.ID, n.AlertID)
	assert.Equal(t, 71000.0, n.Price)

	fired, err = w.Cycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fired)
}

func TestCycle_NothingTracked(t *testing.T) {
	feed := &stubFeed{prices: map[string]float64{}}
	w := newWatcher(t, feed)

	fired, err := w.Cycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fired)
	assert.Equal(t, 0, feed.callCount())
}

func TestCycle_RequiresDependencies(t *testing.T) {
	_, err := (&Watcher{}).Cycle(context.Background())
	require.Error(t, err)
	require.Error(t, (&Watcher{}).Run(context.Background()))
}

func TestRun_RefreshesOnStartAndActivate(t *testing.T) {
	feed := &stubFeed{prices: map[string]float64{"bitcoin": 60000}}
	w := newWatcher(t, feed)

	_, err := actions.AlertCreate(w.DB, "bitcoin", 65000, models.AlertDirectionAbove, "usd")
	require.NoError(t, err)

	sub := w.Bus.Subscribe(models.EventKindTargetPriceReached)
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return feed.callCount() >= 1 }, 5*time.Second, 10*time.Millisecond)

	feed.set("bitcoin", 66000, nil)
	w.Activate()

	n := waitFired(t, sub)
	assert.Equal(t, "bitcoin", n.CoinID)
	assert.Equal(t, 66000.0, n.Price)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRun_FailingCycleDoesNotStopLoop(t *testing.T) {
	feed := &stubFeed{prices: map[string]float64{}}
	feed.set("ethereum", 2500, models.NetworkRequestFailed.Wrap(errors.New("connection refused")))
	w := newWatcher(t, feed)

	_, err := actions.AlertCreate(w.DB, "ethereum", 3000, models.AlertDirectionBelow, "usd")
	require.NoError(t, err)

	sub := w.Bus.Subscribe(models.EventKindTargetPriceReached)
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return feed.callCount() >= 1 }, 5*time.Second, 10*time.Millisecond)

	feed.set("ethereum", 2500, nil)
	w.Activate()

	n := waitFired(t, sub)
	assert.Equal(t, "ethereum", n.CoinID)

	cancel()
	require.NoError(t, <-done)
}

func TestRun_TickerTriggersRefresh(t *testing.T) {
	feed := &stubFeed{prices: map[string]float64{"bitcoin": 1}}
	w := newWatcher(t, feed)
	w.Interval = 20 * time.Millisecond

	_, err := actions.FavoriteAdd(w.DB, "bitcoin")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return feed.callCount() >= 3 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
