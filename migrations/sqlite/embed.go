// Package postgres embeds the SQLite migrations for the template store.
package sqlite

import "embed"

// FS contains the SQL migrations.
//
//go:embed *.sql
var FS embed.FS

// Dir is the directory within FS where migrations live.
const Dir = "."
