package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UpsertShow(t *testing.T) {
	store := NewStore(setupTestDB(t))

	sh := &Show{Title: "Cheers", ExternalID: "100", Duration: 1_500_000, Section: "TV Shows"}
	created, err := store.UpsertShow(sh)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, sh.ID)
	assert.NotZero(t, sh.Unix)
}

func TestStore_UpsertShow_KeepsCursor(t *testing.T) {
	store := NewStore(setupTestDB(t))

	first := &Show{Title: "Cheers", ExternalID: "100"}
	_, err := store.UpsertShow(first)
	require.NoError(t, err)
	require.NoError(t, store.SetShowCursor("Cheers", "Give Me a Ring Sometime"))

	again := &Show{Title: "cheers", ExternalID: "100", FullImageURL: "/art/100", Section: "Sitcoms"}
	created, err := store.UpsertShow(again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Give Me a Ring Sometime", again.Cursor)

	got, err := store.GetShow("CHEERS")
	require.NoError(t, err)
	assert.Equal(t, "Cheers", got.Title)
	assert.Equal(t, "Give Me a Ring Sometime", got.Cursor)
	assert.Equal(t, "/art/100", got.FullImageURL)
	assert.Equal(t, "Sitcoms", got.Section)
}

func TestStore_UpsertShow_TitleHeldByOtherShow(t *testing.T) {
	store := NewStore(setupTestDB(t))

	us := &Show{Title: "The Office", ExternalID: "100", FullImageURL: "/art/100"}
	_, err := store.UpsertShow(us)
	require.NoError(t, err)
	require.NoError(t, store.SetShowCursor("The Office", "Pilot"))

	uk := &Show{Title: "The Office", ExternalID: "200", FullImageURL: "/art/200"}
	created, err := store.UpsertShow(uk)
	require.ErrorIs(t, err, ErrDuplicate)
	assert.False(t, created)

	got, err := store.GetShow("The Office")
	require.NoError(t, err)
	assert.Equal(t, "100", got.ExternalID)
	assert.Equal(t, "/art/100", got.FullImageURL, "existing metadata is untouched")
	assert.Equal(t, "Pilot", got.Cursor)
}

func TestStore_UpsertShow_RenamedOnServer(t *testing.T) {
	store := NewStore(setupTestDB(t))

	_, err := store.UpsertShow(&Show{Title: "Taxi", ExternalID: "100"})
	require.NoError(t, err)
	_, err = store.UpsertShow(&Show{Title: "Wings", ExternalID: "200"})
	require.NoError(t, err)

	// Matches by external id even though another row holds the new title.
	again := &Show{Title: "Wings", ExternalID: "100", Section: "Sitcoms"}
	created, err := store.UpsertShow(again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Taxi", again.Title)
	assert.Equal(t, "Sitcoms", again.Section)
}

func TestStore_UpsertShow_EmptyExternalIDs(t *testing.T) {
	store := NewStore(setupTestDB(t))

	for _, title := range []string{"Taxi", "Wings"} {
		created, err := store.UpsertShow(&Show{Title: title})
		require.NoError(t, err)
		assert.True(t, created, title)
	}

	shows, err := store.ListShows(ShowFilter{})
	require.NoError(t, err)
	assert.Len(t, shows, 2)
}

func TestStore_GetShow_NotFound(t *testing.T) {
	store := NewStore(setupTestDB(t))

	_, err := store.GetShow("Nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_FindShows(t *testing.T) {
	store := NewStore(setupTestDB(t))
	addShow(t, store, "Star Trek")
	addShow(t, store, "Star Trek: The Next Generation")
	addShow(t, store, "Frasier")

	shows, err := store.FindShows("star trek")
	require.NoError(t, err)
	assert.Len(t, shows, 2)

	shows, err = store.FindShows("100%")
	require.NoError(t, err)
	assert.Empty(t, shows)
}

func TestStore_FindShow_BestMatch(t *testing.T) {
	store := NewStore(setupTestDB(t))
	addShow(t, store, "Star Trek: The Next Generation")
	addShow(t, store, "Star Trek")

	got, err := store.FindShow("Star Trek")
	require.NoError(t, err)
	assert.Equal(t, "Star Trek", got.Title)

	_, err = store.FindShow("Seinfeld")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListShows_BySection(t *testing.T) {
	store := NewStore(setupTestDB(t))
	addShow(t, store, "Cheers")
	_, err := store.UpsertShow(&Show{Title: "Looney Tunes", Section: "Cartoons"})
	require.NoError(t, err)

	shows, err := store.ListShows(ShowFilter{Section: ptr("cartoons")})
	require.NoError(t, err)
	require.Len(t, shows, 1)
	assert.Equal(t, "Looney Tunes", shows[0].Title)

	shows, err = store.ListShows(ShowFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, shows, 1)
	assert.Equal(t, "Looney Tunes", shows[0].Title)
}

func TestStore_SetShowCursor_NotFound(t *testing.T) {
	store := NewStore(setupTestDB(t))

	err := store.SetShowCursor("Nope", "Pilot")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ClearShows(t *testing.T) {
	store := NewStore(setupTestDB(t))
	addShow(t, store, "Cheers", "Give Me a Ring Sometime")

	require.NoError(t, store.ClearShows())

	shows, err := store.ListShows(ShowFilter{})
	require.NoError(t, err)
	assert.Empty(t, shows)

	_, total, err := store.ListEpisodes(EpisodeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
