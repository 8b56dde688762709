package migrations

import "embed"

// FS contains embedded SQLite migrations for lookup storage.
//
//go:embed *.sql
var FS embed.FS
