// Package store provides SQLite-backed durable storage for the journal.
//
// It holds two kinds of data:
//   - Records: journal entries keyed by (category, id), fields stored as JSON
//   - Sessions: serialized conversation snapshots keyed by session id
//
// Record ids come from a per-category sequence table, so an id freed by a
// delete is never handed out again. Restore re-inserts a record under its
// original id.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The schema version lives in PRAGMA user_version and is advanced by
// runMigrations on Open.
package store
