package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// StalePriceAge is how old a tracked coin's snapshot may get before
// RunDiagnostics reports it.
const StalePriceAge = time.Hour

// Diagnostic represents a single consistency check finding.
type Diagnostic struct {
	Level           string `json:"level"` // "warning" or "error"
	Code            string `json:"code"`
	Message         string `json:"message"`
	SuggestedAction string `json:"suggested_action,omitempty"`
}

// RunDiagnostics performs consistency checks and returns findings.
func RunDiagnostics(db *sql.DB) ([]Diagnostic, error) {
	var diags []Diagnostic

	unpriced, err := findUnpricedAlerts(db)
	if err != nil {
		return nil, fmt.Errorf("unpriced alert check: %w", err)
	}
	diags = append(diags, unpriced...)

	stale, err := findStalePrices(db)
	if err != nil {
		return nil, fmt.Errorf("stale price check: %w", err)
	}
	diags = append(diags, stale...)

	return diags, nil
}

// findUnpricedAlerts finds pending alerts on coins that were never fetched.
// Usually a misspelled coin id.
func findUnpricedAlerts(db *sql.DB) ([]Diagnostic, error) {
	rows, err := db.QueryContext(context.Background(), `
		SELECT a.id, a.coin_id
		FROM alerts a
		LEFT JOIN coins c ON c.id = a.coin_id
		WHERE a.triggered_at IS NULL
		  AND c.id IS NULL
		ORDER BY a.created_at ASC, a.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var diags []Diagnostic
	for rows.Next() {
		var alertID, coinID string
		if err := rows.Scan(&alertID, &coinID); err != nil {
			return nil, err
		}
		diags = append(diags, Diagnostic{
			Level:           "warning",
			Code:            "UNPRICED_ALERT",
			Message:         fmt.Sprintf("alert %s watches coin %s, which has no stored price", alertID, coinID),
			SuggestedAction: fmt.Sprintf("coinwatch coin refresh --ids %s", coinID),
		})
	}
	return diags, rows.Err()
}

// findStalePrices finds tracked coins whose snapshot is older than StalePriceAge.
func findStalePrices(db *sql.DB) ([]Diagnostic, error) {
	cutoff := fmt.Sprintf("-%d minutes", int(StalePriceAge/time.Minute))
	rows, err := db.QueryContext(context.Background(), `
		SELECT c.id, c.updated_at
		FROM coins c
		WHERE c.updated_at < datetime('now', ?)
		  AND (
			c.id IN (SELECT coin_id FROM favorites)
			OR c.id IN (SELECT coin_id FROM alerts WHERE triggered_at IS NULL)
		  )
		ORDER BY c.id
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var diags []Diagnostic
	for rows.Next() {
		var coinID string
		var updatedAt time.Time
		if err := rows.Scan(&coinID, &updatedAt); err != nil {
			return nil, err
		}
		diags = append(diags, Diagnostic{
			Level:           "warning",
			Code:            "STALE_PRICE",
			Message:         fmt.Sprintf("tracked coin %s was last refreshed at %s", coinID, updatedAt.UTC().Format(time.RFC3339)),
			SuggestedAction: "coinwatch watch --once",
		})
	}
	return diags, rows.Err()
}
