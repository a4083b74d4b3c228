package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Candidates_DurationBounds(t *testing.T) {
	store := NewStore(setupTestDB(t))
	for i, ms := range []int64{15_000, 30_000, 45_000, 60_000} {
		require.NoError(t, store.UpsertMedia(&Media{Kind: KindCommercial, Title: string(rune('a' + i)), Duration: ms}))
	}

	cq := CandidateQuery{Table: string(KindCommercial), MinDuration: 30_000, MaxDuration: 45_000}
	n, err := store.CountCandidates(cq)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	c, err := store.CandidateAt(cq, 1)
	require.NoError(t, err)
	assert.Equal(t, "c", c.Title)
	assert.Equal(t, int64(45_000), c.Duration)

	_, err = store.CandidateAt(cq, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Candidates_ExcludeSection(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	require.NoError(t, store.AddEpisode(&Episode{Title: "A", ShowTitle: "Foo", Duration: 100, Section: "TV Shows"}))
	require.NoError(t, store.AddEpisode(&Episode{Title: "P", ShowTitle: "Mix", Duration: 100, Section: "Playlist"}))
	_, err := db.Exec(`INSERT INTO episodes (title, showTitle, duration) VALUES ('Legacy', 'Old', 100)`)
	require.NoError(t, err)

	n, err := store.CountCandidates(CandidateQuery{Table: "episodes", ExcludeSection: SectionPlaylist, MaxDuration: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStore_Candidates_ShowFilter(t *testing.T) {
	store := NewStore(setupTestDB(t))
	require.NoError(t, store.AddEpisode(&Episode{Title: "A", ShowTitle: "Foo", Duration: 100}))
	require.NoError(t, store.AddEpisode(&Episode{Title: "X", ShowTitle: "Bar", Duration: 100}))

	cq := CandidateQuery{Table: "episodes", ShowTitle: ptr("foo"), MaxDuration: 1000}
	c, err := store.CandidateAt(cq, 0)
	require.NoError(t, err)
	assert.Equal(t, "A", c.Title)
	assert.Equal(t, "Foo", c.ShowTitle)

	_, err = store.CountCandidates(CandidateQuery{Table: "movies", ShowTitle: ptr("foo")})
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestStore_Candidates_UnknownTable(t *testing.T) {
	store := NewStore(setupTestDB(t))

	_, err := store.CountCandidates(CandidateQuery{Table: "daily_schedule"})
	assert.ErrorIs(t, err, ErrConstraint)
}
