package library

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const episodeColumns = `id, COALESCE(unix, 0) AS unix, COALESCE(title, '') AS title,
	COALESCE(duration, 0) AS duration, COALESCE(episodeNumber, 0) AS episodeNumber,
	COALESCE(seasonNumber, 0) AS seasonNumber, COALESCE(showTitle, '') AS showTitle,
	COALESCE(plexMediaID, '') AS plexMediaID, COALESCE(customSectionName, '') AS customSectionName`

func addEpisode(q querier, e *Episode) error {
	now := time.Now().Unix()
	result, err := q.Exec(`
		INSERT INTO episodes (unix, mediaID, title, duration, episodeNumber, seasonNumber, showTitle, plexMediaID, customSectionName)
		VALUES (?, 0, ?, ?, ?, ?, ?, ?, ?)`,
		now, e.Title, e.Duration, e.EpisodeNumber, e.SeasonNumber, e.ShowTitle, nullIfEmpty(e.ExternalID), e.Section,
	)
	if err != nil {
		return fmt.Errorf("insert episode: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	e.ID = id
	e.Unix = now
	return nil
}

// AddEpisode inserts a new episode without checking for an existing row
// with the same external id. Playlists use this because the same episode
// may appear more than once. Sets ID on the struct.
func (s *Store) AddEpisode(e *Episode) error { return addEpisode(s.db, e) }

// AddEpisode inserts a new episode within a transaction.
func (t *Tx) AddEpisode(e *Episode) error { return addEpisode(t.tx, e) }

func upsertEpisode(q querier, e *Episode) (bool, error) {
	if e.ExternalID != "" {
		existing := &Episode{}
		err := sqlx.Get(q, existing, "SELECT "+episodeColumns+` FROM episodes
			WHERE plexMediaID = ? AND showTitle = ? COLLATE NOCASE ORDER BY id LIMIT 1`,
			e.ExternalID, e.ShowTitle)
		if err == nil {
			// Replace in place: the id fixes the episode's playback position.
			now := time.Now().Unix()
			if _, err := q.Exec(`
				UPDATE episodes SET unix = ?, title = ?, duration = ?, episodeNumber = ?, seasonNumber = ?, customSectionName = ?
				WHERE id = ?`,
				now, e.Title, e.Duration, e.EpisodeNumber, e.SeasonNumber, e.Section, existing.ID,
			); err != nil {
				return false, fmt.Errorf("update episode %d: %w", existing.ID, mapSQLiteError(err))
			}
			e.ID = existing.ID
			e.Unix = now
			return false, nil
		}
		if err = mapSQLiteError(err); !errors.Is(err, ErrNotFound) {
			return false, fmt.Errorf("lookup episode %s: %w", e.ExternalID, err)
		}
	}
	if err := addEpisode(q, e); err != nil {
		return false, err
	}
	return true, nil
}

// UpsertEpisode replaces the episode with the same show and external id, or
// inserts it. A replaced episode keeps its ID. Returns true on insert.
func (s *Store) UpsertEpisode(e *Episode) (bool, error) {
	var created bool
	err := s.InTx(func(tx *Tx) error {
		var err error
		created, err = tx.UpsertEpisode(e)
		return err
	})
	return created, err
}

// UpsertEpisode replaces or inserts an episode within a transaction.
func (t *Tx) UpsertEpisode(e *Episode) (bool, error) { return upsertEpisode(t.tx, e) }

func getEpisode(q querier, id int64) (*Episode, error) {
	e := &Episode{}
	err := sqlx.Get(q, e, "SELECT "+episodeColumns+" FROM episodes WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get episode %d: %w", id, mapSQLiteError(err))
	}
	return e, nil
}

// GetEpisode retrieves an episode by ID.
// Returns ErrNotFound if the episode does not exist.
func (s *Store) GetEpisode(id int64) (*Episode, error) { return getEpisode(s.db, id) }

// GetEpisode retrieves an episode by ID within a transaction.
func (t *Tx) GetEpisode(id int64) (*Episode, error) { return getEpisode(t.tx, id) }

func getEpisodeBySeasonEpisode(q querier, showTitle string, season, episode int) (*Episode, error) {
	e := &Episode{}
	err := sqlx.Get(q, e, "SELECT "+episodeColumns+` FROM episodes
		WHERE showTitle = ? COLLATE NOCASE AND seasonNumber = ? AND episodeNumber = ?
		ORDER BY id LIMIT 1`,
		showTitle, season, episode)
	if err != nil {
		return nil, fmt.Errorf("get %s S%02dE%02d: %w", showTitle, season, episode, mapSQLiteError(err))
	}
	return e, nil
}

// GetEpisodeBySeasonEpisode retrieves the episode with the exact show,
// season and episode numbers. Returns ErrNotFound if there is none.
func (s *Store) GetEpisodeBySeasonEpisode(showTitle string, season, episode int) (*Episode, error) {
	return getEpisodeBySeasonEpisode(s.db, showTitle, season, episode)
}

// GetEpisodeBySeasonEpisode retrieves an episode within a transaction.
func (t *Tx) GetEpisodeBySeasonEpisode(showTitle string, season, episode int) (*Episode, error) {
	return getEpisodeBySeasonEpisode(t.tx, showTitle, season, episode)
}

func episodesMatching(q querier, showTitle, column, value string) ([]*Episode, error) {
	var eps []*Episode
	err := sqlx.Select(q, &eps, "SELECT "+episodeColumns+" FROM episodes WHERE showTitle = ? COLLATE NOCASE AND "+
		column+" = ? COLLATE NOCASE ORDER BY id", showTitle, value)
	if err != nil {
		return nil, fmt.Errorf("get %s episodes by %s %q: %w", showTitle, column, value, mapSQLiteError(err))
	}
	return eps, nil
}

// EpisodesByExternalID returns every episode of a show with the given
// external id, oldest row first. Playlists may repeat one.
func (s *Store) EpisodesByExternalID(showTitle, externalID string) ([]*Episode, error) {
	return episodesMatching(s.db, showTitle, "plexMediaID", externalID)
}

// EpisodesByExternalID returns matching episodes within a transaction.
func (t *Tx) EpisodesByExternalID(showTitle, externalID string) ([]*Episode, error) {
	return episodesMatching(t.tx, showTitle, "plexMediaID", externalID)
}

// EpisodesByTitle returns every episode of a show whose title matches
// exactly, ignoring case, oldest row first.
func (s *Store) EpisodesByTitle(showTitle, title string) ([]*Episode, error) {
	return episodesMatching(s.db, showTitle, "title", title)
}

// EpisodesByTitle returns matching episodes within a transaction.
func (t *Tx) EpisodesByTitle(showTitle, title string) ([]*Episode, error) {
	return episodesMatching(t.tx, showTitle, "title", title)
}

func firstEpisode(q querier, showTitle string) (*Episode, error) {
	e := &Episode{}
	err := sqlx.Get(q, e, "SELECT "+episodeColumns+` FROM episodes
		WHERE showTitle = ? COLLATE NOCASE
		ORDER BY seasonNumber, episodeNumber, id LIMIT 1`,
		showTitle)
	if err != nil {
		return nil, fmt.Errorf("first episode of %s: %w", showTitle, mapSQLiteError(err))
	}
	return e, nil
}

// FirstEpisode returns the episode with the lowest (season, episode) pair.
// Returns ErrNotFound if the show has no episodes.
func (s *Store) FirstEpisode(showTitle string) (*Episode, error) { return firstEpisode(s.db, showTitle) }

// FirstEpisode returns the first episode of a show within a transaction.
func (t *Tx) FirstEpisode(showTitle string) (*Episode, error) { return firstEpisode(t.tx, showTitle) }

func episodeAfter(q querier, showTitle string, afterID int64) (*Episode, error) {
	e := &Episode{}
	// Season only, not (season, episode): existing channels depend on this order.
	err := sqlx.Get(q, e, "SELECT "+episodeColumns+` FROM episodes
		WHERE showTitle = ? COLLATE NOCASE AND id > ?
		ORDER BY seasonNumber, id LIMIT 1`,
		showTitle, afterID)
	if err != nil {
		return nil, fmt.Errorf("episode of %s after %d: %w", showTitle, afterID, mapSQLiteError(err))
	}
	return e, nil
}

// EpisodeAfter returns, among the show's episodes inserted after afterID,
// the one with the lowest season number (ties by ID).
// Returns ErrNotFound when afterID is at or past the last episode.
func (s *Store) EpisodeAfter(showTitle string, afterID int64) (*Episode, error) {
	return episodeAfter(s.db, showTitle, afterID)
}

// EpisodeAfter returns the following episode within a transaction.
func (t *Tx) EpisodeAfter(showTitle string, afterID int64) (*Episode, error) {
	return episodeAfter(t.tx, showTitle, afterID)
}

func findEpisodes(q querier, title string) ([]*Episode, error) {
	var eps []*Episode
	err := sqlx.Select(q, &eps,
		"SELECT "+episodeColumns+` FROM episodes WHERE title LIKE ? ESCAPE '\' ORDER BY id`,
		containsPattern(title))
	if err != nil {
		return nil, fmt.Errorf("find episodes %q: %w", title, mapSQLiteError(err))
	}
	return eps, nil
}

// FindEpisodes returns episodes whose title contains title, case-insensitively.
func (s *Store) FindEpisodes(title string) ([]*Episode, error) { return findEpisodes(s.db, title) }

func listEpisodes(q querier, f EpisodeFilter) ([]*Episode, int, error) {
	var conditions []string
	var args []any

	if f.ShowTitle != nil {
		conditions = append(conditions, "showTitle = ? COLLATE NOCASE")
		args = append(args, *f.ShowTitle)
	}
	if f.Season != nil {
		conditions = append(conditions, "seasonNumber = ?")
		args = append(args, *f.Season)
	}
	if f.Section != nil {
		conditions = append(conditions, "customSectionName = ? COLLATE NOCASE")
		args = append(args, *f.Section)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := sqlx.Get(q, &total, "SELECT COUNT(*) FROM episodes"+whereClause, args...); err != nil {
		return nil, 0, fmt.Errorf("count episodes: %w", mapSQLiteError(err))
	}

	query := "SELECT " + episodeColumns + " FROM episodes" + whereClause + " ORDER BY id" + limitClause(f.Limit, f.Offset)
	var results []*Episode
	if err := sqlx.Select(q, &results, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list episodes: %w", mapSQLiteError(err))
	}
	return results, total, nil
}

// ListEpisodes returns episodes matching the filter in insertion order.
// Returns (results, totalCount, error).
func (s *Store) ListEpisodes(f EpisodeFilter) ([]*Episode, int, error) { return listEpisodes(s.db, f) }

// ListEpisodes returns episodes matching the filter within a transaction.
func (t *Tx) ListEpisodes(f EpisodeFilter) ([]*Episode, int, error) { return listEpisodes(t.tx, f) }

// BulkUpsertEpisodes upserts every episode in one transaction.
// Returns the count of newly inserted episodes.
func (s *Store) BulkUpsertEpisodes(episodes []*Episode) (int, error) {
	if len(episodes) == 0 {
		return 0, nil
	}

	inserted := 0
	err := s.InTx(func(tx *Tx) error {
		for _, e := range episodes {
			created, err := tx.UpsertEpisode(e)
			if err != nil {
				return fmt.Errorf("upsert %s S%02dE%02d: %w", e.ShowTitle, e.SeasonNumber, e.EpisodeNumber, err)
			}
			if created {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ReplacePlaylist swaps every stored entry of the playlist title for
// entries, in one transaction. Entries are inserted in order without
// deduplication and tagged SectionPlaylist.
func (s *Store) ReplacePlaylist(title string, entries []*Episode) (int, error) {
	err := s.InTx(func(tx *Tx) error {
		if _, err := tx.tx.Exec("DELETE FROM episodes WHERE showTitle = ? COLLATE NOCASE AND customSectionName = ?",
			title, SectionPlaylist); err != nil {
			return fmt.Errorf("clear playlist %q: %w", title, mapSQLiteError(err))
		}
		for i, e := range entries {
			e.ShowTitle = title
			e.Section = SectionPlaylist
			if err := tx.AddEpisode(e); err != nil {
				return fmt.Errorf("add playlist %q entry %d: %w", title, i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
