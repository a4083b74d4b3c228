// Package schedule materializes the daily timeline and serves the weekly
// template.
package schedule

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/vmunix/pseudotv/internal/library"
)

// Store reads and writes the schedule and daily_schedule tables.
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// NewStore creates a schedule store.
func NewStore(db *sqlx.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, log: logger.With().Str("component", "schedule").Logger()}
}

func (s *Store) inTx(fn func(*sqlx.Tx) error) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", library.MapError(err))
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", library.MapError(err))
	}
	return nil
}
