// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog for the process and returns the root logger.
// format is "json" or "console"; level is any zerolog level name.
func Setup(level, format string) (zerolog.Logger, error) {
	return SetupWithWriter(level, format, os.Stdout)
}

// SetupWithWriter is Setup with an explicit output.
func SetupWithWriter(level, format string, out io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer
	switch strings.ToLower(format) {
	case "", "json":
		w = out
	case "console":
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}
	default:
		return zerolog.Nop(), fmt.Errorf("log format %q: want json or console", format)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(w).With().Timestamp().Logger().Level(lvl)
	log.Logger = logger
	return logger, nil
}
