package actions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dotcommander/coinwatch/internal/events"
	"github.com/dotcommander/coinwatch/internal/models"
	"github.com/dotcommander/coinwatch/internal/store"
)

// AlertCreate validates and stores a pending alert whose target is quoted in
// vsCurrency.
func AlertCreate(db *sql.DB, coinID string, target float64, direction models.AlertDirection, vsCurrency string) (*models.Alert, error) {
	coinID, err := normalizeCoinID(coinID)
	if err != nil {
		return nil, err
	}
	if !(target > 0) || math.IsInf(target, 0) {
		return nil, models.ErrorInvalidTargetPrice
	}
	direction = models.AlertDirection(strings.ToLower(strings.TrimSpace(string(direction))))
	if !direction.Valid() {
		return nil, models.ErrorInvalidAlertDirection
	}
	vsCurrency = normalizeCurrency(vsCurrency)
	if vsCurrency == "" {
		return nil, models.ErrorVsCurrencyRequired
	}
	return store.CreateAlert(db, coinID, target, direction, vsCurrency)
}

func AlertGet(db *sql.DB, id string) (*models.Alert, error) {
	return store.GetAlert(db, strings.TrimSpace(id))
}

func AlertList(db *sql.DB, includeTriggered bool) ([]*models.Alert, error) {
	return store.ListAlerts(db, includeTriggered)
}

func AlertDelete(db *sql.DB, id string) error {
	return store.DeleteAlert(db, strings.TrimSpace(id))
}

func normalizeCurrency(vs string) string {
	return strings.ToLower(strings.TrimSpace(vs))
}

func quoteKey(vsCurrency, coinID string) string {
	return normalizeCurrency(vsCurrency) + "|" + coinID
}

// EvaluateAlerts checks every pending alert against the coin snapshot quoted in
// the alert's own currency; alerts with no such snapshot in coins wait. Each
// alert whose target is reached is marked triggered and logged as a
// target_price_reached event in one transaction. The returned notifications
// are for the caller to publish; an alert never appears in more than one
// evaluation.
func EvaluateAlerts(ctx context.Context, db *sql.DB, coins []models.Coin) ([]events.TargetPriceReached, error) {
	if len(coins) == 0 {
		return nil, nil
	}
	quotes := make(map[string]models.Coin, len(coins))
	for _, c := range coins {
		quotes[quoteKey(c.VsCurrency, c.ID)] = c
	}

	var fired []events.TargetPriceReached
	err := store.TransactContext(ctx, db, func(tx *sql.Tx) error {
		fired = fired[:0]

		pending, err := store.ListPendingAlertsTx(tx)
		if err != nil {
			return models.PersistenceFetchFailed.Wrap(err)
		}

		now := time.Now().UTC()
		for _, a := range pending {
			coin, ok := quotes[quoteKey(a.VsCurrency, a.CoinID)]
			if !ok || !a.Direction.Reached(coin.CurrentPrice, a.TargetPrice) {
				continue
			}

			changed, err := store.MarkAlertTriggeredTx(tx, a.ID, now)
			if err != nil {
				return err
			}
			if !changed {
				continue
			}

			n := events.TargetPriceReached{
				AlertID:     a.ID,
				CoinID:      a.CoinID,
				Symbol:      coin.Symbol,
				Direction:   a.Direction,
				TargetPrice: a.TargetPrice,
				Price:       coin.CurrentPrice,
				VsCurrency:  coin.VsCurrency,
				At:          now,
			}
			n.Message = TargetReachedMessage(coin, a)

			meta, err := json.Marshal(n)
			if err != nil {
				return fmt.Errorf("failed to encode event metadata: %w", err)
			}
			n.EventID, err = store.InsertEventTx(tx, models.EventKindTargetPriceReached, a.CoinID, n.Message, string(meta))
			if err != nil {
				return err
			}
			fired = append(fired, n)
		}
		return nil
	})
	if err != nil {
		var classified models.DescriptiveError
		if errors.As(err, &classified) {
			return nil, err
		}
		return nil, models.PersistenceSaveFailed.Wrap(err)
	}
	return fired, nil
}

// TargetReachedMessage renders the notification text for a fired alert, e.g.
// "Bitcoin (BTC) rose above $70,000.00: now $70,123.45".
func TargetReachedMessage(coin models.Coin, a *models.Alert) string {
	verb := "rose above"
	if a.Direction == models.AlertDirectionBelow {
		verb = "fell below"
	}
	name := coin.Name
	if name == "" {
		name = a.CoinID
	}
	if coin.Symbol != "" {
		name += " (" + strings.ToUpper(coin.Symbol) + ")"
	}
	return fmt.Sprintf("%s %s %s: now %s",
		name, verb,
		FormatPrice(a.TargetPrice, coin.VsCurrency),
		FormatPrice(coin.CurrentPrice, coin.VsCurrency))
}
