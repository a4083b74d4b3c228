package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio/v2"
)

//go:embed default_config.toml
var defaultConfig string

// WriteDefault writes the example config to the specified path.
// Creates parent directories if needed.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(path, []byte(defaultConfig), 0o644)
}

// Write serializes the config to TOML and replaces the file at path.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending config: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if err := toml.NewEncoder(pending).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return pending.CloseAtomicallyReplace()
}
