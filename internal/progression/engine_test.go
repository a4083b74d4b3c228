package progression

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/pseudotv/internal/database"
	"github.com/vmunix/pseudotv/internal/events"
	"github.com/vmunix/pseudotv/internal/library"
)

func setupStore(t *testing.T) *library.Store {
	t.Helper()
	db, err := database.OpenAndMigrate(database.MemoryPath, database.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return library.NewStore(db)
}

type ep struct {
	title      string
	season     int
	episode    int
	externalID string
}

func seedShow(t *testing.T, store *library.Store, show string, eps ...ep) {
	t.Helper()
	_, err := store.UpsertShow(&library.Show{Title: show, Section: "TV Shows"})
	require.NoError(t, err)
	for _, e := range eps {
		require.NoError(t, store.AddEpisode(&library.Episode{
			Title:         e.title,
			ShowTitle:     show,
			SeasonNumber:  e.season,
			EpisodeNumber: e.episode,
			ExternalID:    e.externalID,
			Section:       "TV Shows",
		}))
	}
}

func cursorOf(t *testing.T, store *library.Store, show string) string {
	t.Helper()
	sh, err := store.GetShow(show)
	require.NoError(t, err)
	return sh.Cursor
}

func titles(t *testing.T, eng *Engine, show string, n int) []string {
	t.Helper()
	var out []string
	for range n {
		e, err := eng.NextEpisode(context.Background(), show)
		require.NoError(t, err)
		out = append(out, e.Title)
	}
	return out
}

var foo = []ep{{"A", 1, 1, ""}, {"B", 1, 2, ""}, {"C", 2, 1, ""}}

func TestNextEpisode_Cycle(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Foo", foo...)
	eng := New(store, zerolog.Nop())

	e, err := eng.NextEpisode(context.Background(), "Foo")
	require.NoError(t, err)
	assert.Equal(t, "A", e.Title)
	assert.Equal(t, "A", cursorOf(t, store, "Foo"))

	assert.Equal(t, []string{"B", "C", "A", "B", "C", "A"}, titles(t, eng, "Foo", 6))
	assert.Equal(t, "A", cursorOf(t, store, "Foo"))
}

// Only the season number orders candidates after the cursor. S2E1 was
// inserted between S1E1 and S1E2, so from S1E1 the engine jumps to S1E2 and
// then wraps, never reaching S2E1.
func TestNextEpisode_SeasonOnlyOrdering(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Foo", ep{"S1E1", 1, 1, ""}, ep{"S2E1", 2, 1, ""}, ep{"S1E2", 1, 2, ""})
	eng := New(store, zerolog.Nop())

	assert.Equal(t, []string{"S1E1", "S1E2", "S1E1", "S1E2"}, titles(t, eng, "Foo", 4))
}

func TestNextEpisode_DuplicateTitlesCycle(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Foo",
		ep{"Pilot", 1, 1, "101"}, ep{"Untitled", 1, 2, "102"}, ep{"Untitled", 1, 3, "103"}, ep{"Finale", 1, 4, "104"})
	eng := New(store, zerolog.Nop())

	got := titles(t, eng, "Foo", 2)
	assert.Equal(t, []string{"Pilot", "Untitled"}, got)
	assert.Equal(t, "102", cursorOf(t, store, "Foo"), "a shared title is written as the external id")

	assert.Equal(t, []string{"Untitled", "Finale", "Pilot", "Untitled", "Untitled", "Finale"}, titles(t, eng, "Foo", 6))
	assert.Equal(t, "Finale", cursorOf(t, store, "Foo"))
}

func TestNextEpisode_RepeatedPlaylistEntries(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Mix",
		ep{"Pilot", 1, 1, "301"}, ep{"Alien", 1, 2, "7"}, ep{"Pilot", 1, 3, "301"}, ep{"Finale", 1, 4, "304"})
	eng := New(store, zerolog.Nop())

	assert.Equal(t, []string{"Pilot", "Alien", "Pilot"}, titles(t, eng, "Mix", 3))
	assert.Equal(t, "Pilot#2", cursorOf(t, store, "Mix"))
	assert.Equal(t, []string{"Finale", "Pilot", "Alien"}, titles(t, eng, "Mix", 3))
}

func TestNextEpisode_LegacyTitleCursor(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Foo", foo...)
	require.NoError(t, store.SetShowCursor("Foo", "b"))
	eng := New(store, zerolog.Nop())

	e, err := eng.NextEpisode(context.Background(), "Foo")
	require.NoError(t, err)
	assert.Equal(t, "C", e.Title)
}

func TestNextEpisode_ExternalIDCursor(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Foo", ep{"A", 1, 1, "101"}, ep{"B", 1, 2, "102"}, ep{"C", 2, 1, "103"})
	require.NoError(t, store.SetShowCursor("Foo", "102"))
	eng := New(store, zerolog.Nop())

	e, err := eng.NextEpisode(context.Background(), "Foo")
	require.NoError(t, err)
	assert.Equal(t, "C", e.Title)
	// Title format is the default writer.
	assert.Equal(t, "C", cursorOf(t, store, "Foo"))
}

func TestNextEpisode_WritesExternalIDFormat(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Foo", ep{"A", 1, 1, "101"}, ep{"B", 1, 2, ""})
	eng := New(store, zerolog.Nop(), WithCursorFormat(FormatExternalID))

	_, err := eng.NextEpisode(context.Background(), "Foo")
	require.NoError(t, err)
	assert.Equal(t, "101", cursorOf(t, store, "Foo"))

	// No external id: falls back to the title.
	_, err = eng.NextEpisode(context.Background(), "Foo")
	require.NoError(t, err)
	assert.Equal(t, "B", cursorOf(t, store, "Foo"))

	assert.Equal(t, []string{"A", "B"}, titles(t, eng, "Foo", 2))
}

// An external id that looks like another episode's title still resolves
// by external id first.
func TestNextEpisode_ExternalIDWinsOverTitle(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Foo", ep{"2", 1, 1, "9"}, ep{"B", 1, 2, "2"}, ep{"C", 1, 3, "3"})
	require.NoError(t, store.SetShowCursor("Foo", "2"))
	eng := New(store, zerolog.Nop())

	e, err := eng.NextEpisode(context.Background(), "Foo")
	require.NoError(t, err)
	assert.Equal(t, "C", e.Title)
}

func TestNextEpisode_SelfHeal(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Foo", foo...)
	seedShow(t, store, "Bar", ep{"Elsewhere", 1, 1, "x1"})
	require.NoError(t, store.SetShowCursor("Foo", "Elsewhere"))

	bus := events.NewBus(nil, zerolog.Nop())
	defer bus.Close()
	recovered := bus.Subscribe(events.EventCursorRecovered, 1)
	eng := New(store, zerolog.Nop(), WithPublisher(bus))

	e, err := eng.NextEpisode(context.Background(), "Foo")
	require.NoError(t, err)
	assert.Equal(t, "A", e.Title)
	assert.Equal(t, "A", cursorOf(t, store, "Foo"))

	require.Len(t, recovered, 1)
	ev := (<-recovered).(*events.CursorRecovered)
	assert.Equal(t, "Elsewhere", ev.Cursor)
	assert.Equal(t, "Foo", ev.ShowTitle)
}

func TestNextEpisode_WrapEvent(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Foo", foo...)
	require.NoError(t, store.SetShowCursor("Foo", "C"))

	bus := events.NewBus(nil, zerolog.Nop())
	defer bus.Close()
	wrapped := bus.Subscribe(events.EventSeriesWrapped, 1)
	advanced := bus.Subscribe(events.EventEpisodeAdvanced, 1)
	eng := New(store, zerolog.Nop(), WithPublisher(bus))

	e, err := eng.NextEpisode(context.Background(), "Foo")
	require.NoError(t, err)
	assert.Equal(t, "A", e.Title)

	require.Len(t, wrapped, 1)
	require.Len(t, advanced, 1)
	adv := (<-advanced).(*events.EpisodeAdvanced)
	assert.Equal(t, "A", adv.EpisodeTitle)
	assert.Equal(t, "A", adv.Cursor)
}

func TestNextEpisode_NoEpisodes(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Empty")
	eng := New(store, zerolog.Nop())

	_, err := eng.NextEpisode(context.Background(), "Empty")
	assert.ErrorIs(t, err, library.ErrNotFound)

	require.NoError(t, store.SetShowCursor("Empty", "Stale"))
	_, err = eng.NextEpisode(context.Background(), "Empty")
	assert.ErrorIs(t, err, library.ErrNotFound)
	assert.Equal(t, "Stale", cursorOf(t, store, "Empty"))

	_, err = eng.NextEpisode(context.Background(), "Unknown")
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestNextEpisode_MissingShowRow(t *testing.T) {
	store := setupStore(t)
	require.NoError(t, store.AddEpisode(&library.Episode{Title: "Track 1", ShowTitle: "Mix", Section: library.SectionPlaylist}))
	require.NoError(t, store.AddEpisode(&library.Episode{Title: "Track 2", ShowTitle: "Mix", Section: library.SectionPlaylist}))
	eng := New(store, zerolog.Nop())

	assert.Equal(t, []string{"Track 1", "Track 2", "Track 1"}, titles(t, eng, "Mix", 3))
	assert.Equal(t, "Track 1", cursorOf(t, store, "Mix"))
}

func TestNextEpisode_CaseInsensitiveShow(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Foo", foo...)
	eng := New(store, zerolog.Nop())

	assert.Equal(t, []string{"A", "B"}, titles(t, eng, "FOO", 2))
	assert.Equal(t, "B", cursorOf(t, store, "foo"))
}

func TestNextEpisode_ConcurrentCallers(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Foo", foo...)
	eng := New(store, zerolog.Nop())

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		counts = map[string]int{}
	)
	for range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := eng.NextEpisode(context.Background(), "Foo")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			counts[e.Title]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, map[string]int{"A": 10, "B": 10, "C": 10}, counts)
}

func TestPeek(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Foo", foo...)
	eng := New(store, zerolog.Nop())

	e, err := eng.Peek("Foo")
	require.NoError(t, err)
	assert.Equal(t, "A", e.Title)
	assert.Empty(t, cursorOf(t, store, "Foo"))

	_, err = eng.NextEpisode(context.Background(), "Foo")
	require.NoError(t, err)
	e, err = eng.Peek("Foo")
	require.NoError(t, err)
	assert.Equal(t, "B", e.Title)
	assert.Equal(t, "A", cursorOf(t, store, "Foo"))
}

func TestReset(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Foo", foo...)
	eng := New(store, zerolog.Nop())

	assert.Equal(t, []string{"A", "B"}, titles(t, eng, "Foo", 2))
	require.NoError(t, eng.Reset("Foo"))
	assert.Empty(t, cursorOf(t, store, "Foo"))
	assert.Equal(t, []string{"A"}, titles(t, eng, "Foo", 1))

	assert.ErrorIs(t, eng.Reset("Unknown"), library.ErrNotFound)
}

func TestCursorAndRestore(t *testing.T) {
	store := setupStore(t)
	seedShow(t, store, "Foo", foo...)
	eng := New(store, zerolog.Nop())

	before, err := eng.Cursor("Foo")
	require.NoError(t, err)
	assert.Empty(t, before)

	assert.Equal(t, []string{"A", "B"}, titles(t, eng, "Foo", 2))
	saved, err := eng.Cursor("foo")
	require.NoError(t, err)
	assert.Equal(t, "B", saved)

	assert.Equal(t, []string{"C"}, titles(t, eng, "Foo", 1))
	require.NoError(t, eng.RestoreCursor("Foo", saved))
	assert.Equal(t, []string{"C"}, titles(t, eng, "Foo", 1))

	missing, err := eng.Cursor("Unknown")
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.ErrorIs(t, eng.RestoreCursor("Unknown", "x"), library.ErrNotFound)
}
