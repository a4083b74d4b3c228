// Package migrations provides embedded SQL migration files.
package migrations

import (
	_ "embed"
)

//go:embed sql/001_initial.sql
var InitialSQL string

//go:embed sql/002_events.sql
var Migration002Events string

// All returns the migrations in the order they must be applied.
// Every statement is idempotent, so the full list runs on each start.
func All() []string {
	return []string{InitialSQL, Migration002Events}
}
