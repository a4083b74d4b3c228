package library

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func mediaColumns(k Kind) string {
	played := "'' AS lastPlayedDate"
	if k == KindMovie {
		played = "COALESCE(lastPlayedDate, '') AS lastPlayedDate"
	}
	return `id, COALESCE(unix, 0) AS unix, COALESCE(title, '') AS title,
	COALESCE(duration, 0) AS duration, ` + played + `,
	COALESCE(plexMediaID, '') AS plexMediaID, COALESCE(customSectionName, '') AS customSectionName`
}

func checkKind(k Kind) error {
	if !k.Valid() {
		return fmt.Errorf("unknown media kind %q: %w", k, ErrConstraint)
	}
	return nil
}

func upsertMedia(q querier, m *Media) error {
	if err := checkKind(m.Kind); err != nil {
		return err
	}
	now := time.Now().Unix()
	// ON CONFLICT keeps the row id and, for movies, lastPlayedDate.
	_, err := q.Exec(`
		INSERT INTO `+string(m.Kind)+` (unix, mediaID, title, duration, plexMediaID, customSectionName)
		VALUES (?, 0, ?, ?, ?, ?)
		ON CONFLICT (plexMediaID) DO UPDATE SET
			unix = excluded.unix, title = excluded.title, duration = excluded.duration,
			customSectionName = excluded.customSectionName`,
		now, m.Title, m.Duration, nullIfEmpty(m.ExternalID), m.Section,
	)
	if err != nil {
		return fmt.Errorf("upsert %s %q: %w", m.Kind, m.Title, mapSQLiteError(err))
	}
	if m.ExternalID == "" {
		if err := sqlx.Get(q, &m.ID, "SELECT last_insert_rowid()"); err != nil {
			return fmt.Errorf("get last insert id: %w", mapSQLiteError(err))
		}
	} else if err := sqlx.Get(q, &m.ID, "SELECT id FROM "+string(m.Kind)+" WHERE plexMediaID = ?", m.ExternalID); err != nil {
		return fmt.Errorf("get %s %s: %w", m.Kind, m.ExternalID, mapSQLiteError(err))
	}
	m.Unix = now
	return nil
}

// UpsertMedia inserts a catalog item, or updates the item with the same
// external id in place. Sets ID on the struct.
func (s *Store) UpsertMedia(m *Media) error { return upsertMedia(s.db, m) }

// UpsertMedia inserts or updates a catalog item within a transaction.
func (t *Tx) UpsertMedia(m *Media) error { return upsertMedia(t.tx, m) }

func getMediaByExternalID(q querier, k Kind, externalID string) (*Media, error) {
	if err := checkKind(k); err != nil {
		return nil, err
	}
	m := &Media{}
	err := sqlx.Get(q, m, "SELECT "+mediaColumns(k)+" FROM "+string(k)+" WHERE plexMediaID = ?", externalID)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", k, externalID, mapSQLiteError(err))
	}
	m.Kind = k
	return m, nil
}

// GetMediaByExternalID retrieves a catalog item by external id.
// Returns ErrNotFound if it does not exist.
func (s *Store) GetMediaByExternalID(k Kind, externalID string) (*Media, error) {
	return getMediaByExternalID(s.db, k, externalID)
}

// GetMediaByExternalID retrieves a catalog item within a transaction.
func (t *Tx) GetMediaByExternalID(k Kind, externalID string) (*Media, error) {
	return getMediaByExternalID(t.tx, k, externalID)
}

func findMedia(q querier, k Kind, title string) ([]*Media, error) {
	if err := checkKind(k); err != nil {
		return nil, err
	}
	var items []*Media
	err := sqlx.Select(q, &items,
		"SELECT "+mediaColumns(k)+" FROM "+string(k)+` WHERE title LIKE ? ESCAPE '\' ORDER BY id`,
		containsPattern(title))
	if err != nil {
		return nil, fmt.Errorf("find %s %q: %w", k, title, mapSQLiteError(err))
	}
	for _, m := range items {
		m.Kind = k
	}
	return items, nil
}

// FindMedia returns items of kind k whose title contains title,
// case-insensitively.
func (s *Store) FindMedia(k Kind, title string) ([]*Media, error) { return findMedia(s.db, k, title) }

// FindMedia returns matching items within a transaction.
func (t *Tx) FindMedia(k Kind, title string) ([]*Media, error) { return findMedia(t.tx, k, title) }

func listMedia(q querier, k Kind, f MediaFilter) ([]*Media, error) {
	if err := checkKind(k); err != nil {
		return nil, err
	}
	query := "SELECT " + mediaColumns(k) + " FROM " + string(k)
	var args []any
	if f.Section != nil {
		query += " WHERE customSectionName = ? COLLATE NOCASE"
		args = append(args, *f.Section)
	}
	switch k {
	case KindMovie:
		// Least recently played first; never-played movies sort first.
		query += " ORDER BY COALESCE(lastPlayedDate, '') ASC, id"
	case KindCommercial:
		query += " ORDER BY duration ASC, id"
	default:
		query += " ORDER BY id"
	}
	query += limitClause(f.Limit, f.Offset)

	var items []*Media
	if err := sqlx.Select(q, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", k, mapSQLiteError(err))
	}
	for _, m := range items {
		m.Kind = k
	}
	return items, nil
}

// ListMedia returns every item of kind k. Movies are ordered by last played
// date, commercials by duration, everything else by insertion order.
func (s *Store) ListMedia(k Kind, f MediaFilter) ([]*Media, error) { return listMedia(s.db, k, f) }

// ListMedia returns items of kind k within a transaction.
func (t *Tx) ListMedia(k Kind, f MediaFilter) ([]*Media, error) { return listMedia(t.tx, k, f) }

// MarkMoviePlayed stamps the movie with the given date (YYYY-MM-DD).
// Returns ErrNotFound if no movie has that title.
func (s *Store) MarkMoviePlayed(title string, on time.Time) error {
	result, err := s.db.Exec("UPDATE movies SET lastPlayedDate = ? WHERE title = ? COLLATE NOCASE",
		on.Format(time.DateOnly), title)
	if err != nil {
		return fmt.Errorf("mark movie %q played: %w", title, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("mark movie %q played: %w", title, ErrNotFound)
	}
	return nil
}
