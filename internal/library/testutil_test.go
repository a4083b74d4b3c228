package library

import (
	"testing"

	"github.com/jmoiron/sqlx"
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

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}

func addShow(t *testing.T, store *Store, title string, episodes ...string) *Show {
	t.Helper()
	sh := &Show{Title: title, Section: "TV Shows"}
	_, err := store.UpsertShow(sh)
	require.NoError(t, err)
	for i, ep := range episodes {
		require.NoError(t, store.AddEpisode(&Episode{
			Title:         ep,
			ShowTitle:     title,
			SeasonNumber:  1,
			EpisodeNumber: i + 1,
			Duration:      1_320_000,
			Section:       "TV Shows",
		}))
	}
	return sh
}
