// Package database opens the SQLite store shared by every component.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // pure Go driver, registers "sqlite"

	"github.com/vmunix/pseudotv/internal/migrations"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Config defines SQLite operational parameters.
type Config struct {
	BusyTimeout  time.Duration
	MaxOpenConns int
}

// DefaultConfig returns the settings used by the daemon and CLI.
func DefaultConfig() Config {
	return Config{
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 4,
	}
}

// Open initializes a connection pool with WAL and busy_timeout applied to
// every connection, then pings it.
func Open(path string, cfg Config) (*sqlx.DB, error) {
	var dsn string
	if path == MemoryPath {
		// Each pooled connection would get its own empty database.
		cfg.MaxOpenConns = 1
		dsn = fmt.Sprintf(":memory:?_pragma=busy_timeout(%d)", cfg.BusyTimeout.Milliseconds())
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
			path, cfg.BusyTimeout.Milliseconds())
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	if path == MemoryPath {
		// Closing the last connection drops an in-memory database.
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema. Databases written by earlier
// releases may hold several shows with the same title; those are kept, and
// the unique title index is left off until the duplicates are gone.
func Migrate(db *sqlx.DB) error {
	for i, stmt := range migrations.All() {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %03d: %w", i+1, err)
		}
	}
	return ensureShowTitleIndex(db)
}

// ensureShowTitleIndex creates idx_shows_title when every show title is
// unique case-insensitively.
func ensureShowTitleIndex(db *sqlx.DB) error {
	var dupes []string
	err := db.Select(&dupes, `
		SELECT MIN(title) FROM shows
		WHERE title IS NOT NULL
		GROUP BY title COLLATE NOCASE
		HAVING COUNT(*) > 1
		ORDER BY 1`)
	if err != nil {
		return fmt.Errorf("check duplicate show titles: %w", err)
	}
	if len(dupes) > 0 {
		log.Warn().
			Str("component", "database").
			Strs("titles", dupes).
			Msg("shows share a title; unique title index not created")
		return nil
	}
	if _, err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_shows_title ON shows (title COLLATE NOCASE)"); err != nil {
		return fmt.Errorf("create show title index: %w", err)
	}
	return nil
}

// OpenAndMigrate is Open followed by Migrate.
func OpenAndMigrate(path string, cfg Config) (*sqlx.DB, error) {
	db, err := Open(path, cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
