package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/vmunix/pseudotv/internal/config"
	"github.com/vmunix/pseudotv/internal/database"
	"github.com/vmunix/pseudotv/internal/logging"
)

// resolveConfigPath returns --config or the discovered config file.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.Discover()
}

// openLocal loads the config and opens the database it names, for
// commands that work without a running daemon.
func openLocal() (*config.Config, *sqlx.DB, zerolog.Logger, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	// Diagnostics go to stderr so stdout stays clean for --json.
	logger, err := logging.SetupWithWriter(cfg.Server.LogLevel, "console", os.Stderr)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, nil, zerolog.Nop(), fmt.Errorf("create db dir: %w", err)
	}
	db, err := database.OpenAndMigrate(cfg.Database.Path, database.DefaultConfig())
	if err != nil {
		return nil, nil, zerolog.Nop(), fmt.Errorf("open db: %w", err)
	}
	return cfg, db, logger, nil
}
