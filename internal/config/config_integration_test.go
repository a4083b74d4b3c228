package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestFullWorkflow(t *testing.T) {
	tmp := t.TempDir()

	// 1. Write default config
	cfgPath := filepath.Join(tmp, "pseudotv", "config.toml")
	if err := WriteDefault(cfgPath); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	// 2. Set required env vars (t.Setenv auto-restores on cleanup)
	t.Setenv("PLEX_TOKEN", "test-plex-token")
	t.Setenv("PSEUDOTV_DATA", tmp)

	// 3. The shipped default must load and validate
	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// 4. Verify env substitution
	if cfg.Plex == nil || cfg.Plex.Token != "test-plex-token" {
		t.Fatalf("expected plex token substituted, got %+v", cfg.Plex)
	}
	if cfg.Plex.URL != "http://localhost:32400" {
		t.Errorf("expected default plex url, got %q", cfg.Plex.URL)
	}
	if want := filepath.Join(tmp, "pseudotv.db"); cfg.Database.Path != want {
		t.Errorf("expected database path %q, got %q", want, cfg.Database.Path)
	}
	if len(cfg.Plex.Sections) != 3 {
		t.Errorf("expected 3 plex sections, got %d", len(cfg.Plex.Sections))
	}

	// 5. An empty token resolves but fails validation
	t.Setenv("PLEX_TOKEN", "")
	_, err = Load(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "plex.token") {
		t.Fatalf("expected plex.token validation error, got %v", err)
	}
}
