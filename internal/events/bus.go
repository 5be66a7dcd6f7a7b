package events

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dotcommander/coinwatch/internal/models"
)

// DefaultBuffer is the per-subscription channel capacity when none is configured.
const DefaultBuffer = 16

// Bus fans events out to subscribers. Publish never blocks: a subscriber that
// is not keeping up misses events instead of stalling the publisher.
type Bus struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	log    *slog.Logger
}

type Options struct {
	Buffer int
	Log    *slog.Logger
}

// NewBus with the given options.
// If no logger is provided, logs are discarded.
func NewBus(opts Options) *Bus {
	if opts.Log == nil {
		opts.Log = slog.New(slog.DiscardHandler)
	}
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	return &Bus{
		subs:   make(map[*Subscription]struct{}),
		buffer: opts.Buffer,
		log:    opts.Log,
	}
}

// Subscription receives the events of the kinds it subscribed to.
type Subscription struct {
	bus     *Bus
	kinds   []models.EventKind
	ch      chan Event
	once    sync.Once
	dropped atomic.Uint64
}

// Subscribe to the given kinds, or to every kind when none are given.
func (b *Bus) Subscribe(kinds ...models.EventKind) *Subscription {
	s := &Subscription{
		bus:   b,
		kinds: slices.Clone(kinds),
		ch:    make(chan Event, b.buffer),
	}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	return s
}

// C is closed when the subscription is closed.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Dropped is the number of events missed because the buffer was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Close unsubscribes and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s)
		close(s.ch)
		s.bus.mu.Unlock()
	})
}

func (s *Subscription) wants(k models.EventKind) bool {
	return len(s.kinds) == 0 || slices.Contains(s.kinds, k)
}

// Publish delivers e to every matching subscriber and returns how many received it.
func (b *Bus) Publish(e Event) int {
	if e == nil {
		return 0
	}
	kind := e.Kind()

	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for s := range b.subs {
		if !s.wants(kind) {
			continue
		}
		select {
		case s.ch <- e:
			delivered++
		default:
			s.dropped.Add(1)
			b.log.Warn("Dropped event for slow subscriber", "kind", kind, "dropped", s.dropped.Load())
		}
	}
	return delivered
}

// Len is the number of open subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
