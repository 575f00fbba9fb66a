// Package sqlite persists tagging runs in SQLite.
//
// A run groups the frame tag records and window verdicts produced by one
// batch invocation. Schema changes live in migrations/ and are embedded
// into the binary; MigrateUp applies them through golang-migrate.
//
// Tag lists are stored as JSON arrays so FramesWithTag can filter with
// SQLite's json_each without a join table.
package sqlite
