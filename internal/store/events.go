package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dotcommander/coinwatch/internal/models"
)

// Event payload size constraints enforced by ValidateEventPayload.
const (
	MaxEventCoinIDLength   = 128
	MaxEventMessageLength  = 4096
	MaxEventMetadataLength = 16384
)

// ValidateEventPayload enforces event payload constraints for durability and safety.
func ValidateEventPayload(kind models.EventKind, coinID, message, metadata string) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown event kind %q", kind)
	}
	if len(coinID) > MaxEventCoinIDLength {
		return fmt.Errorf("event coin id exceeds max length (%d)", MaxEventCoinIDLength)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return errors.New("event message is required")
	}
	if len(message) > MaxEventMessageLength {
		return fmt.Errorf("event message exceeds max length (%d)", MaxEventMessageLength)
	}
	if metadata != "" {
		if len(metadata) > MaxEventMetadataLength {
			return fmt.Errorf("event metadata exceeds max length (%d)", MaxEventMetadataLength)
		}
		if !json.Valid([]byte(metadata)) {
			return errors.New("event metadata must be valid JSON")
		}
	}
	return nil
}

// InsertEventTx appends a row to the event log and returns its id.
func InsertEventTx(tx *sql.Tx, kind models.EventKind, coinID, message, metadata string) (int64, error) {
	if err := ValidateEventPayload(kind, coinID, message, metadata); err != nil {
		return 0, err
	}

	result, err := tx.Exec(`
		INSERT INTO events (kind, coin_id, message, metadata)
		VALUES (?, ?, ?, ?)
	`, string(kind), nullIfEmpty(coinID), strings.TrimSpace(message), nullIfEmpty(metadata))
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}

	eventID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return eventID, nil
}

// InsertEvent appends a row to the event log in its own transaction.
func InsertEvent(db *sql.DB, kind models.EventKind, coinID, message, metadata string) (int64, error) {
	var id int64
	err := Transact(db, func(tx *sql.Tx) error {
		var err error
		id, err = InsertEventTx(tx, kind, coinID, message, metadata)
		return err
	})
	if err != nil {
		return 0, models.PersistenceSaveFailed.Wrap(err)
	}
	return id, nil
}

// ListEventsParams filters ListEvents. Zero values mean "no filter".
type ListEventsParams struct {
	Kind    models.EventKind
	CoinID  string
	SinceID int64
	Limit   int
	Desc    bool
}

// ListEvents queries the event log. Limit defaults to 50 and is capped at 1000.
func ListEvents(db *sql.DB, p ListEventsParams) ([]*models.Event, error) {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 1000 {
		p.Limit = 1000
	}

	where := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if p.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(p.Kind))
	}
	if p.CoinID != "" {
		where = append(where, "coin_id = ?")
		args = append(args, p.CoinID)
	}
	if p.SinceID > 0 {
		where = append(where, "id > ?")
		args = append(args, p.SinceID)
	}

	query := `SELECT id, kind, coin_id, message, metadata, created_at FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if p.Desc {
		query += " ORDER BY id DESC"
	} else {
		query += " ORDER BY id ASC"
	}
	query += " LIMIT ?"
	args = append(args, p.Limit)

	var out []*models.Event
	err := RetryWithBackoff(func() error {
		rows, err := db.Query(query, args...)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}
		defer func() { _ = rows.Close() }()

		out = make([]*models.Event, 0)
		for rows.Next() {
			var e models.Event
			var kind string
			var coinID, meta sql.NullString
			if err := rows.Scan(&e.ID, &kind, &coinID, &e.Message, &meta, &e.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan event: %w", err)
			}
			e.Kind = models.EventKind(kind)
			e.CoinID = scanNullString(coinID)
			if m := scanNullString(meta); m != "" && json.Valid([]byte(m)) {
				e.Metadata = json.RawMessage(m)
			}
			e.CreatedAt = e.CreatedAt.UTC()
			out = append(out, &e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, models.PersistenceFetchFailed.Wrap(err)
	}
	return out, nil
}
