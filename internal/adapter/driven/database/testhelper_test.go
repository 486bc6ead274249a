package database

import (
	"context"
	"net/url"
	"testing"
)

// setupTestDB opens a named shared in-memory SQLite database with the schema
// applied. A unique name derived from t.Name() keeps tests isolated.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db := openTestDB(t)
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	return db
}

// openTestDB opens the in-memory database without creating any tables.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so it cannot be read as DSN query parameters.
	path := url.PathEscape(t.Name()) + "?mode=memory&cache=shared"

	db, err := Open(context.Background(), Options{Driver: DialectSQLite, Path: path})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}
