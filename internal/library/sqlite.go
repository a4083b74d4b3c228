package library

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// mapSQLiteError converts SQLite errors to custom error types.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	// modernc.org/sqlite wraps errors; check error message for constraint violations
	errStr := err.Error()
	if strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "PRIMARY KEY constraint failed") {
		return ErrDuplicate
	}
	if strings.Contains(errStr, "FOREIGN KEY constraint failed") ||
		strings.Contains(errStr, "CHECK constraint failed") {
		return ErrConstraint
	}
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}

// containsPattern builds a LIKE pattern matching s anywhere, with LIKE
// metacharacters in s escaped. Use with ESCAPE '\'.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func limitClause(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}

// nullIfEmpty stores empty external ids as NULL so they never collide on the
// unique plexMediaID indexes.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// MapError maps a driver error onto the package sentinels for stores that
// share this database.
func MapError(err error) error {
	return mapSQLiteError(err)
}
