package events

import (
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/pseudotv/internal/database"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenAndMigrate(database.MemoryPath, database.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// testEvent is a concrete event type for testing
type testEvent struct {
	BaseEvent
	Message string `json:"message"`
}

func TestEventLog_Append(t *testing.T) {
	log := NewEventLog(setupTestDB(t))

	e := &testEvent{BaseEvent: NewBaseEvent("test.created", "test", "a"), Message: "hello"}
	id, err := log.Append(e)
	require.NoError(t, err)
	assert.Positive(t, id)

	events, err := log.ForEntity("test", "a")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Payload, `"message":"hello"`)
	assert.Equal(t, "test.created", events[0].EventType)
	assert.Equal(t, "test", events[0].EntityType)
	assert.Equal(t, "a", events[0].EntityKey)
}

func TestEventLog_Since(t *testing.T) {
	log := NewEventLog(setupTestDB(t))
	start := time.Now().Add(-time.Hour)

	_, err := log.Append(&testEvent{BaseEvent: NewBaseEvent("test.first", "test", "1"), Message: "first"})
	require.NoError(t, err)
	_, err = log.Append(&testEvent{BaseEvent: NewBaseEvent("test.second", "test", "2"), Message: "second"})
	require.NoError(t, err)

	events, err := log.Since(start)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "test.first", events[0].EventType)
	assert.Equal(t, "test.second", events[1].EventType)
}

func TestEventLog_ForEntity(t *testing.T) {
	log := NewEventLog(setupTestDB(t))

	for _, e := range []*testEvent{
		{BaseEvent: NewBaseEvent("test.one", EntityShow, "Foo")},
		{BaseEvent: NewBaseEvent("test.two", EntityShow, "Bar")},
		{BaseEvent: NewBaseEvent("test.three", EntityShow, "Foo")},
	} {
		_, err := log.Append(e)
		require.NoError(t, err)
	}

	events, err := log.ForEntity(EntityShow, "Foo")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "test.one", events[0].EventType)
	assert.Equal(t, "test.three", events[1].EventType)

	events, err = log.ForEntity(EntityShow, "Bar")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEventLog_Prune(t *testing.T) {
	db := setupTestDB(t)
	log := NewEventLog(db)

	_, err := db.Exec(`
		INSERT INTO events (event_type, entity_type, entity_key, payload, occurred_at)
		VALUES (?, ?, ?, ?, ?)`,
		"test.old", "test", "1", `{"message":"old"}`, time.Now().Add(-100*24*time.Hour).UTC(),
	)
	require.NoError(t, err)
	_, err = log.Append(&testEvent{BaseEvent: NewBaseEvent("test.new", "test", "2"), Message: "new"})
	require.NoError(t, err)

	count, err := log.Prune(90 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	events, err := log.Since(time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "test.new", events[0].EventType)
}

func TestEventLog_Recent(t *testing.T) {
	log := NewEventLog(setupTestDB(t))

	for i := range 5 {
		_, err := log.Append(&EpisodeAdvanced{
			BaseEvent:    NewBaseEvent(EventEpisodeAdvanced, EntityShow, fmt.Sprintf("Show %d", i+1)),
			EpisodeTitle: "Pilot",
		})
		require.NoError(t, err)
	}

	events, err := log.Recent(3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "Show 5", events[0].EntityKey)
	assert.Equal(t, "Show 4", events[1].EntityKey)
	assert.Equal(t, "Show 3", events[2].EntityKey)
}
