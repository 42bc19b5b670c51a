// Package postgres embeds the PostgreSQL migrations for the template store.
package postgres

import "embed"

// FS contains the SQL migrations.
//
//go:embed *.sql
var FS embed.FS

// Dir is the directory within FS where migrations live.
const Dir = "."
