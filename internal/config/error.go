package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid matches any *ConfigError via errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// ConfigError aggregates configuration problems found while loading one file.
type ConfigError struct {
	Path    string
	Missing []string // unresolved environment references
	Errors  []string // validation failures, "field: problem"
}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}

	var b strings.Builder
	if e.Path != "" {
		fmt.Fprintf(&b, "%s:\n", e.Path)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "missing environment variables: %s\n", strings.Join(e.Missing, ", "))
	}
	if len(e.Errors) > 0 {
		b.WriteString("validation failed:\n")
		for _, msg := range e.Errors {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target is ErrInvalid.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalid }

// HasErrors returns true if there are any errors.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}
