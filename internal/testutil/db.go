package testutil

import (
	"path/filepath"
	"testing"

	"event-ticketing-api/internal/database"
)

// NewTestDB opens a migrated SQLite database in a temporary directory that is
// removed when the test finishes.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.NewConnection(database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	return db
}
