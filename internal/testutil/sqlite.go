package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/leapstack-labs/sqljudge/internal/store"
)

// SQLiteStore creates a throwaway SQLite database under t.TempDir, runs the
// given statements against it and returns a store config pointing at it.
func SQLiteStore(t testing.TB, statements ...string) store.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open fixture database: %v", err)
	}
	defer func() { _ = db.Close() }()

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to seed fixture database: %v", err)
		}
	}

	return store.Config{Type: "sqlite", Path: path}
}
