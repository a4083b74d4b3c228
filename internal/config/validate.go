package config

import (
	"fmt"
	"net/url"
	"time"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validLogFormats = map[string]bool{"json": true, "console": true, "": true}

var validCursorFormats = map[string]bool{"title": true, "external_id": true, "": true}

var validSectionKinds = map[string]bool{
	"shows": true, "playlist": true, "movies": true, "videos": true, "music": true, "commercials": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server
	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}
	if !validLogFormats[c.Server.LogFormat] {
		errs = append(errs, fmt.Sprintf("server.log_format: must be json or console; got %q", c.Server.LogFormat))
	}

	// Channel
	if _, err := c.Channel.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("channel.timezone: %v", err))
	}
	if c.Channel.RebuildAt != "" {
		if _, err := time.Parse("15:04", c.Channel.RebuildAt); err != nil {
			errs = append(errs, fmt.Sprintf("channel.rebuild_at: must be HH:MM, got %q", c.Channel.RebuildAt))
		}
	}
	if !validCursorFormats[c.Channel.CursorFormat] {
		errs = append(errs, fmt.Sprintf("channel.cursor_format: must be title or external_id; got %q", c.Channel.CursorFormat))
	}
	if c.Channel.CommercialMin < 0 || c.Channel.CommercialMax < 0 {
		errs = append(errs, "channel.commercial_min, commercial_max: must not be negative")
	} else if c.Channel.CommercialMax != 0 && c.Channel.CommercialMin > c.Channel.CommercialMax {
		errs = append(errs, fmt.Sprintf("channel.commercial_min: %d exceeds commercial_max %d", c.Channel.CommercialMin, c.Channel.CommercialMax))
	}

	// Plex
	if c.Plex != nil {
		if c.Plex.URL == "" {
			errs = append(errs, "plex.url: required when plex is configured")
		} else if u, err := url.Parse(c.Plex.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("plex.url: not an absolute URL: %q", c.Plex.URL))
		}
		if c.Plex.Token == "" {
			errs = append(errs, "plex.token: required when plex is configured")
		}
		for i, s := range c.Plex.Sections {
			if s.Name == "" {
				errs = append(errs, fmt.Sprintf("plex.sections[%d].name: required", i))
			}
			if !validSectionKinds[s.Kind] {
				errs = append(errs, fmt.Sprintf("plex.sections[%d].kind: must be one of shows, playlist, movies, videos, music, commercials; got %q", i, s.Kind))
			}
		}
	}

	return errs
}
