// Package sqlite provides the SQLite-backed reference library.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements driven.ReferenceStore.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Applied versions are recorded in schema_migrations.
//
// Deleted references are soft deleted: the row keeps its data and gains a
// deleted_at timestamp, and every read filters it out.
//
// # Data Location
//
// By default, the database is stored at ~/.brandlens/data/library.db
//
// # Thread Safety
//
// All operations are thread-safe. Writes are serialised by a store-level
// mutex on top of the locking SQLite provides in WAL mode.
package sqlite
