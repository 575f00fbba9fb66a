package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// setupTestDB opens a fresh database in a temp dir with every embedded
// migration applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "tags.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}
