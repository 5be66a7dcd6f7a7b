// Package events carries application signals between components through an
// injected, typed publish/subscribe bus.
package events

import (
	"time"

	"github.com/dotcommander/coinwatch/internal/models"
)

// Event is implemented only by the message types in this package.
type Event interface {
	Kind() models.EventKind
	event()
}

// TargetPriceReached is published once per alert, when the coin's price first
// reaches the alert's target.
type TargetPriceReached struct {
	AlertID     string                `json:"alert_id"`
	CoinID      string                `json:"coin_id"`
	Symbol      string                `json:"symbol"`
	Direction   models.AlertDirection `json:"direction"`
	TargetPrice float64               `json:"target_price"`
	Price       float64               `json:"price"`
	VsCurrency  string                `json:"vs_currency"`
	Message     string                `json:"message"`
	EventID     int64                 `json:"event_id,omitempty"`
	At          time.Time             `json:"at"`
}

func (TargetPriceReached) Kind() models.EventKind { return models.EventKindTargetPriceReached }
func (TargetPriceReached) event()                 {}

// AppDidBecomeActive asks listeners to refresh now instead of waiting.
type AppDidBecomeActive struct {
	At time.Time `json:"at"`
}

func (AppDidBecomeActive) Kind() models.EventKind { return models.EventKindAppDidBecomeActive }
func (AppDidBecomeActive) event()                 {}

var (
	_ Event = TargetPriceReached{}
	_ Event = AppDidBecomeActive{}
)
