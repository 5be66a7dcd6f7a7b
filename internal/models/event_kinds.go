package models

// EventKind names an application signal. The set is closed: only the constants
// below are valid.
type EventKind string

const (
	// EventKindTargetPriceReached fires when a coin's price crosses an alert's target.
	EventKindTargetPriceReached EventKind = "target_price_reached"
	// EventKindAppDidBecomeActive fires when the watcher (re)activates and should
	// refresh prices immediately instead of waiting for the next tick.
	EventKindAppDidBecomeActive EventKind = "app_did_become_active"
)

// EventKinds returns every valid kind.
func EventKinds() []EventKind {
	return []EventKind{EventKindTargetPriceReached, EventKindAppDidBecomeActive}
}

// Valid reports whether k is one of the defined kinds.
func (k EventKind) Valid() bool {
	switch k {
	case EventKindTargetPriceReached, EventKindAppDidBecomeActive:
		return true
	}
	return false
}

func (k EventKind) String() string {
	return string(k)
}
