// Package migrations embeds the reference library schema for the SQLite store.
package migrations

import "embed"

// FS holds the NNN_name.up.sql and NNN_name.down.sql files. Up migrations
// are applied in version order and recorded in schema_migrations.
//
//go:embed *.sql
var FS embed.FS
