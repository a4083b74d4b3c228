package library

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Candidate is the part of any catalog row that random selection needs.
type Candidate struct {
	ID         int64  `db:"id"`
	Title      string `db:"title"`
	Duration   int64  `db:"duration"` // milliseconds
	ExternalID string `db:"plexMediaID"`
	Section    string `db:"customSectionName"`
	ShowTitle  string `db:"showTitle"` // episodes only
}

// CandidateQuery selects rows of one catalog table by duration.
type CandidateQuery struct {
	Table          string // episodes, shows, or a Kind
	ShowTitle      *string
	ExcludeSection string
	MinDuration    int64 // milliseconds, inclusive
	MaxDuration    int64 // milliseconds, inclusive
}

func (cq CandidateQuery) where() (string, []any, error) {
	switch cq.Table {
	case "episodes", "shows":
	default:
		if !Kind(cq.Table).Valid() {
			return "", nil, fmt.Errorf("unknown catalog table %q: %w", cq.Table, ErrConstraint)
		}
	}
	conds := []string{"COALESCE(duration, 0) BETWEEN ? AND ?"}
	args := []any{cq.MinDuration, cq.MaxDuration}
	if cq.ShowTitle != nil {
		if cq.Table != "episodes" {
			return "", nil, fmt.Errorf("show filter on %s: %w", cq.Table, ErrConstraint)
		}
		conds = append(conds, "showTitle = ? COLLATE NOCASE")
		args = append(args, *cq.ShowTitle)
	}
	if cq.ExcludeSection != "" {
		conds = append(conds, "COALESCE(customSectionName, '') <> ? COLLATE NOCASE")
		args = append(args, cq.ExcludeSection)
	}
	return " FROM " + cq.Table + " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (cq CandidateQuery) columns() string {
	show := "'' AS showTitle"
	if cq.Table == "episodes" {
		show = "COALESCE(showTitle, '') AS showTitle"
	}
	return `id, COALESCE(title, '') AS title, COALESCE(duration, 0) AS duration,
	COALESCE(plexMediaID, '') AS plexMediaID, COALESCE(customSectionName, '') AS customSectionName, ` + show
}

func countCandidates(q querier, cq CandidateQuery) (int, error) {
	where, args, err := cq.where()
	if err != nil {
		return 0, err
	}
	var n int
	if err := sqlx.Get(q, &n, "SELECT COUNT(*)"+where, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", cq.Table, mapSQLiteError(err))
	}
	return n, nil
}

// CountCandidates returns how many rows match the query.
func (s *Store) CountCandidates(cq CandidateQuery) (int, error) { return countCandidates(s.db, cq) }

// CountCandidates counts matching rows within a transaction.
func (t *Tx) CountCandidates(cq CandidateQuery) (int, error) { return countCandidates(t.tx, cq) }

func candidateAt(q querier, cq CandidateQuery, offset int) (*Candidate, error) {
	where, args, err := cq.where()
	if err != nil {
		return nil, err
	}
	c := &Candidate{}
	err = sqlx.Get(q, c, "SELECT "+cq.columns()+where+" ORDER BY id LIMIT 1 OFFSET ?", append(args, offset)...)
	if err != nil {
		return nil, fmt.Errorf("%s candidate %d: %w", cq.Table, offset, mapSQLiteError(err))
	}
	return c, nil
}

// CandidateAt returns the offset-th matching row in id order.
// Returns ErrNotFound when offset is past the last match.
func (s *Store) CandidateAt(cq CandidateQuery, offset int) (*Candidate, error) {
	return candidateAt(s.db, cq, offset)
}

// CandidateAt returns the offset-th matching row within a transaction.
func (t *Tx) CandidateAt(cq CandidateQuery, offset int) (*Candidate, error) {
	return candidateAt(t.tx, cq, offset)
}
