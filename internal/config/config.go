// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Channel  ChannelConfig  `toml:"channel"`
	Plex     *PlexConfig    `toml:"plex"`
	Guide    GuideConfig    `toml:"guide"`
}

type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"` // json or console
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type ChannelConfig struct {
	Name           string `toml:"name"`
	ID             string `toml:"id"`
	Icon           string `toml:"icon"`
	Timezone       string `toml:"timezone"`
	RebuildAt      string `toml:"rebuild_at"`    // HH:MM
	CursorFormat   string `toml:"cursor_format"` // title or external_id
	CommercialFill bool   `toml:"commercial_fill"`
	CommercialMin  int    `toml:"commercial_min"` // seconds
	CommercialMax  int    `toml:"commercial_max"` // seconds
}

// Location returns the channel's time zone.
func (c ChannelConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// RebuildOffset returns RebuildAt as an offset from midnight.
func (c ChannelConfig) RebuildOffset() (time.Duration, error) {
	t, err := time.Parse("15:04", c.RebuildAt)
	if err != nil {
		return 0, fmt.Errorf("rebuild_at %q: want HH:MM", c.RebuildAt)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// CommercialRange returns the commercial length bounds.
func (c ChannelConfig) CommercialRange() (time.Duration, time.Duration) {
	return time.Duration(c.CommercialMin) * time.Second, time.Duration(c.CommercialMax) * time.Second
}

type PlexConfig struct {
	URL      string        `toml:"url"`
	Token    string        `toml:"token"`
	Sections []PlexSection `toml:"sections"`
}

type PlexSection struct {
	Name          string `toml:"name"`
	Kind          string `toml:"kind"`
	CustomSection string `toml:"custom_section"`
}

type GuideConfig struct {
	Path string `toml:"path"` // empty disables the file export
}

// Load reads, substitutes, decodes and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}
	return cfg, nil
}

// LoadWithoutValidation reads and decodes the configuration file and
// applies defaults. Unresolved environment variables are still an error.
func LoadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8484
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = "json"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/pseudotv.db"
	}
	if c.Channel.Name == "" {
		c.Channel.Name = "PseudoTV"
	}
	if c.Channel.ID == "" {
		c.Channel.ID = "pseudotv.1"
	}
	if c.Channel.Timezone == "" {
		c.Channel.Timezone = "Local"
	}
	if c.Channel.RebuildAt == "" {
		c.Channel.RebuildAt = "00:00"
	}
	if c.Channel.CursorFormat == "" {
		c.Channel.CursorFormat = "title"
	}
	if c.Channel.CommercialMin == 0 {
		c.Channel.CommercialMin = 15
	}
	if c.Channel.CommercialMax == 0 {
		c.Channel.CommercialMax = 120
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars expands environment references. It returns the
// expanded content and the references that could not be resolved; an
// unresolved reference is left in place.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case ":-":
			if !ok || value == "" {
				return arg
			}
			return value
		case ":?":
			if !ok || value == "" {
				missing = append(missing, fmt.Sprintf("%s: %s", name, strings.TrimSpace(arg)))
				return match
			}
			return value
		}
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	return out, missing
}
