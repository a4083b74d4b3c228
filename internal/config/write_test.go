package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pseudotv", "config.toml")

	require.NoError(t, WriteDefault(path), "WriteDefault failed")

	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read written file")
	assert.Contains(t, string(content), "[server]")
	assert.Contains(t, string(content), "[channel]")
	assert.Contains(t, string(content), "[[plex.sections]]")
	assert.Contains(t, string(content), "${PLEX_TOKEN}")
}

func TestWriteDefault_CreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "config.toml")

	require.NoError(t, WriteDefault(path), "WriteDefault failed")

	_, err := os.Stat(path)
	assert.False(t, os.IsNotExist(err), "file was not created")
}

func TestConfig_Write_RoundTrip(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 9000},
		Channel: ChannelConfig{Name: "Retro", CommercialFill: true},
		Plex: &PlexConfig{
			URL: "http://plex:32400", Token: "t",
			Sections: []PlexSection{{Name: "TV Shows", Kind: "shows"}},
		},
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, cfg.Write(path), "Write failed")

	back, err := LoadWithoutValidation(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", back.Server.Host)
	assert.Equal(t, 9000, back.Server.Port)
	assert.True(t, back.Channel.CommercialFill)
	require.NotNil(t, back.Plex)
	assert.Equal(t, cfg.Plex.Sections, back.Plex.Sections)
}
