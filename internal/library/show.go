package library

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vmunix/pseudotv/pkg/titlematch"
)

// Legacy rows may hold NULL in any column.
const showColumns = `id, COALESCE(unix, 0) AS unix, COALESCE(title, '') AS title,
	COALESCE(duration, 0) AS duration, COALESCE(lastEpisodeTitle, '') AS lastEpisodeTitle,
	COALESCE(fullImageURL, '') AS fullImageURL, COALESCE(plexMediaID, '') AS plexMediaID,
	COALESCE(customSectionName, '') AS customSectionName`

func upsertShow(q querier, sh *Show) (bool, error) {
	now := time.Now().Unix()
	result, err := q.Exec(`
		INSERT OR IGNORE INTO shows (unix, mediaID, title, duration, lastEpisodeTitle, fullImageURL, plexMediaID, customSectionName)
		VALUES (?, 0, ?, ?, ?, ?, ?, ?)`,
		now, sh.Title, sh.Duration, sh.Cursor, sh.FullImageURL, nullIfEmpty(sh.ExternalID), sh.Section,
	)
	if err != nil {
		return false, fmt.Errorf("insert show %q: %w", sh.Title, mapSQLiteError(err))
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		id, err := result.LastInsertId()
		if err != nil {
			return false, fmt.Errorf("get last insert id: %w", err)
		}
		sh.ID = id
		sh.Unix = now
		return true, nil
	}

	// Existing show: refresh metadata, never the cursor.
	existing := &Show{}
	err = sqlx.Get(q, existing, "SELECT "+showColumns+` FROM shows
		WHERE (? <> '' AND plexMediaID = ?) OR title = ? COLLATE NOCASE
		ORDER BY (? <> '' AND plexMediaID = ?) DESC, id LIMIT 1`,
		sh.ExternalID, sh.ExternalID, sh.Title, sh.ExternalID, sh.ExternalID)
	if err != nil {
		return false, fmt.Errorf("get show %q: %w", sh.Title, mapSQLiteError(err))
	}
	// A different server item with the same title: its episodes would merge
	// into the existing show.
	if sh.ExternalID != "" && existing.ExternalID != "" && existing.ExternalID != sh.ExternalID {
		return false, fmt.Errorf("show %q is already stored with external id %s: %w",
			sh.Title, existing.ExternalID, ErrDuplicate)
	}
	if _, err := q.Exec("UPDATE shows SET duration = ?, fullImageURL = ?, customSectionName = ? WHERE id = ?",
		sh.Duration, sh.FullImageURL, sh.Section, existing.ID,
	); err != nil {
		return false, fmt.Errorf("update show %q: %w", sh.Title, mapSQLiteError(err))
	}
	existing.Duration = sh.Duration
	existing.FullImageURL = sh.FullImageURL
	existing.Section = sh.Section
	*sh = *existing
	return false, nil
}

// UpsertShow inserts a show, or refreshes its metadata if a show with the
// same title or external id exists. The cursor of an existing show is kept.
// Returns true when a new row was created, and ErrDuplicate when the title
// belongs to a show with another external id.
func (s *Store) UpsertShow(sh *Show) (bool, error) { return upsertShow(s.db, sh) }

// UpsertShow inserts or refreshes a show within a transaction.
func (t *Tx) UpsertShow(sh *Show) (bool, error) { return upsertShow(t.tx, sh) }

func getShow(q querier, title string) (*Show, error) {
	sh := &Show{}
	err := sqlx.Get(q, sh, "SELECT "+showColumns+" FROM shows WHERE title = ? COLLATE NOCASE LIMIT 1", title)
	if err != nil {
		return nil, fmt.Errorf("get show %q: %w", title, mapSQLiteError(err))
	}
	return sh, nil
}

// GetShow retrieves a show by title (case-insensitive exact match).
// Returns ErrNotFound if the show does not exist.
func (s *Store) GetShow(title string) (*Show, error) { return getShow(s.db, title) }

// GetShow retrieves a show by title within a transaction.
func (t *Tx) GetShow(title string) (*Show, error) { return getShow(t.tx, title) }

func findShows(q querier, title string) ([]*Show, error) {
	var shows []*Show
	err := sqlx.Select(q, &shows,
		"SELECT "+showColumns+` FROM shows WHERE title LIKE ? ESCAPE '\' ORDER BY id`,
		containsPattern(title))
	if err != nil {
		return nil, fmt.Errorf("find shows %q: %w", title, mapSQLiteError(err))
	}
	return shows, nil
}

// FindShows returns shows whose title contains title, case-insensitively.
func (s *Store) FindShows(title string) ([]*Show, error) { return findShows(s.db, title) }

// FindShow returns the partial title match that best resembles title.
// Returns ErrNotFound if no show title contains title.
func (s *Store) FindShow(title string) (*Show, error) {
	shows, err := findShows(s.db, title)
	if err != nil {
		return nil, err
	}
	if len(shows) == 0 {
		return nil, fmt.Errorf("find show %q: %w", title, ErrNotFound)
	}
	titles := make([]string, len(shows))
	for i, sh := range shows {
		titles[i] = sh.Title
	}
	return shows[titlematch.Rank(title, titles)[0].Index], nil
}

func listShows(q querier, f ShowFilter) ([]*Show, error) {
	query := "SELECT " + showColumns + " FROM shows"
	var args []any
	if f.Section != nil {
		query += " WHERE customSectionName = ? COLLATE NOCASE"
		args = append(args, *f.Section)
	}
	query += " ORDER BY title COLLATE NOCASE" + limitClause(f.Limit, f.Offset)

	var shows []*Show
	if err := sqlx.Select(q, &shows, query, args...); err != nil {
		return nil, fmt.Errorf("list shows: %w", mapSQLiteError(err))
	}
	return shows, nil
}

// ListShows returns shows ordered by title.
func (s *Store) ListShows(f ShowFilter) ([]*Show, error) { return listShows(s.db, f) }

// ListShows returns shows within a transaction.
func (t *Tx) ListShows(f ShowFilter) ([]*Show, error) { return listShows(t.tx, f) }

func setShowCursor(q querier, title, cursor string) error {
	result, err := q.Exec("UPDATE shows SET lastEpisodeTitle = ? WHERE title = ? COLLATE NOCASE", cursor, title)
	if err != nil {
		return fmt.Errorf("set cursor for %q: %w", title, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set cursor for %q: %w", title, ErrNotFound)
	}
	return nil
}

// SetShowCursor overwrites the persisted cursor of a show.
// Returns ErrNotFound if the show does not exist.
func (s *Store) SetShowCursor(title, cursor string) error { return setShowCursor(s.db, title, cursor) }

// SetShowCursor overwrites the cursor within a transaction.
func (t *Tx) SetShowCursor(title, cursor string) error { return setShowCursor(t.tx, title, cursor) }

// ClearShows removes every show. Episodes are left in place.
func (s *Store) ClearShows() error {
	if _, err := s.db.Exec("DELETE FROM shows"); err != nil {
		return fmt.Errorf("clear shows: %w", mapSQLiteError(err))
	}
	return nil
}
