package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// EventLog persists events to SQLite.
type EventLog struct {
	db *sqlx.DB
}

// NewEventLog creates a new event log.
func NewEventLog(db *sqlx.DB) *EventLog {
	return &EventLog{db: db}
}

// Append persists an event and returns its ID.
func (l *EventLog) Append(e Event) (int64, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("marshal event: %w", err)
	}

	result, err := l.db.Exec(`
		INSERT INTO events (event_type, entity_type, entity_key, payload, occurred_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.EventType(), e.EntityType(), e.EntityKey(), string(payload), e.OccurredAt().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return result.LastInsertId()
}

// RawEvent represents a persisted event with its raw payload.
type RawEvent struct {
	ID         int64     `db:"id"`
	EventType  string    `db:"event_type"`
	EntityType string    `db:"entity_type"`
	EntityKey  string    `db:"entity_key"`
	Payload    string    `db:"payload"`
	OccurredAt time.Time `db:"occurred_at"`
}

const rawColumns = "id, event_type, entity_type, entity_key, payload, occurred_at"

// Since returns all events since the given time, oldest first.
func (l *EventLog) Since(t time.Time) ([]RawEvent, error) {
	var events []RawEvent
	err := l.db.Select(&events, "SELECT "+rawColumns+" FROM events WHERE occurred_at >= ? ORDER BY id ASC", t.UTC())
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return events, nil
}

// ForEntity returns all events for a specific entity, oldest first.
func (l *EventLog) ForEntity(entityType, entityKey string) ([]RawEvent, error) {
	var events []RawEvent
	err := l.db.Select(&events, "SELECT "+rawColumns+` FROM events
		WHERE entity_type = ? AND entity_key = ? ORDER BY id ASC`,
		entityType, entityKey)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return events, nil
}

// Recent returns the newest n events, newest first.
func (l *EventLog) Recent(n int) ([]RawEvent, error) {
	var events []RawEvent
	err := l.db.Select(&events, "SELECT "+rawColumns+" FROM events ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return events, nil
}

// Prune removes events older than the given duration.
func (l *EventLog) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC()
	result, err := l.db.Exec(`DELETE FROM events WHERE occurred_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return result.RowsAffected()
}
