package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchema_CreatesClicksTable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureSchema(ctx, db))

	var name string
	err := db.SQL.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'clicks'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "clicks", name)
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewClickRepo(db)

	require.NoError(t, EnsureSchema(ctx, db))
	require.NoError(t, repo.Record(ctx))

	// Second run must neither fail nor touch existing rows.
	require.NoError(t, EnsureSchema(ctx, db))

	clicks, err := repo.ListRecent(ctx, 20)
	require.NoError(t, err)
	assert.Len(t, clicks, 1)
}

func TestEnsureSchema_PreexistingTable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// A table left behind by an earlier deployment that never ran migrations.
	_, err := db.SQL.ExecContext(ctx,
		`CREATE TABLE clicks (id INTEGER PRIMARY KEY AUTOINCREMENT, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`)
	require.NoError(t, err)
	_, err = db.SQL.ExecContext(ctx, `INSERT INTO clicks DEFAULT VALUES`)
	require.NoError(t, err)

	require.NoError(t, EnsureSchema(ctx, db))

	clicks, err := NewClickRepo(db).ListRecent(ctx, 20)
	require.NoError(t, err)
	assert.Len(t, clicks, 1)
}

func TestEnsureSchema_UnsupportedDialect(t *testing.T) {
	db := openTestDB(t)
	bogus := &DB{SQL: db.SQL, Dialect: "oracle"}

	err := EnsureSchema(context.Background(), bogus)

	require.Error(t, err)
}

// TestEnsureSchema_RecoversDirtyVersion covers an attempt that died between
// marking version 1 dirty and creating the table.
func TestEnsureSchema_RecoversDirtyVersion(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.SQL.ExecContext(ctx, `CREATE TABLE schema_migrations (version uint64, dirty bool)`)
	require.NoError(t, err)
	_, err = db.SQL.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (1, 1)`)
	require.NoError(t, err)

	require.NoError(t, EnsureSchema(ctx, db))

	var name string
	err = db.SQL.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'clicks'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "clicks", name)

	var version int
	var isDirty bool
	err = db.SQL.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations`).Scan(&version, &isDirty)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.False(t, isDirty)

	// Later attempts see a clean schema.
	require.NoError(t, EnsureSchema(ctx, db))
}
