package models

import (
	"encoding/json"
	"time"
)

// ID Strategy:
// - Events use int64 (append-only log, monotonic ordering)
// - Alerts use prefixed strings (e.g., "alert_1712345678901234567_a3f9c0d1e2b4")
// - Coins use the market data provider's id ("bitcoin", "ethereum")

// Coin is a market snapshot for one coin, quoted in VsCurrency.
type Coin struct {
	ID                       string    `json:"id"`
	Symbol                   string    `json:"symbol"`
	Name                     string    `json:"name"`
	Image                    string    `json:"image,omitempty"`
	CurrentPrice             float64   `json:"current_price"`
	MarketCap                float64   `json:"market_cap"`
	MarketCapRank            int       `json:"market_cap_rank"`
	TotalVolume              float64   `json:"total_volume"`
	High24h                  float64   `json:"high_24h"`
	Low24h                   float64   `json:"low_24h"`
	PriceChange24h           float64   `json:"price_change_24h"`
	PriceChangePercentage24h float64   `json:"price_change_percentage_24h"`
	VsCurrency               string    `json:"vs_currency"`
	LastUpdated              time.Time `json:"last_updated"`
}

// Favorite marks a coin as part of the watchlist.
type Favorite struct {
	CoinID    string    `json:"coin_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AlertDirection is which side of the target price triggers an alert.
type AlertDirection string

// Alert direction constants.
const (
	AlertDirectionAbove AlertDirection = "above"
	AlertDirectionBelow AlertDirection = "below"
)

// Valid returns true for the defined directions.
func (d AlertDirection) Valid() bool {
	return d == AlertDirectionAbove || d == AlertDirectionBelow
}

// Reached reports whether price satisfies target in direction d.
// Touching the target counts.
func (d AlertDirection) Reached(price, target float64) bool {
	switch d {
	case AlertDirectionAbove:
		return price >= target
	case AlertDirectionBelow:
		return price <= target
	default:
		return false
	}
}

// Alert is a target-price alert on a coin. TargetPrice is quoted in VsCurrency
// and only compared against prices in that currency. TriggeredAt is set once,
// the first time the price reaches the target; triggered alerts are never
// re-evaluated.
type Alert struct {
	ID          string         `json:"id"`
	CoinID      string         `json:"coin_id"`
	TargetPrice float64        `json:"target_price"`
	Direction   AlertDirection `json:"direction"`
	VsCurrency  string         `json:"vs_currency"`
	CreatedAt   time.Time      `json:"created_at"`
	TriggeredAt *time.Time     `json:"triggered_at,omitempty"`
}

// IsTriggered returns true once the alert has fired.
func (a *Alert) IsTriggered() bool {
	return a.TriggeredAt != nil
}

// Event is a row in the local event log.
type Event struct {
	ID        int64           `json:"id"`
	Kind      EventKind       `json:"kind"`
	CoinID    string          `json:"coin_id,omitempty"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
