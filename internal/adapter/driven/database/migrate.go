package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// EnsureSchema creates the clicks table if it does not exist yet, using the
// migrations embedded for db's dialect. Calling it again is a no-op, and a
// run left dirty by an interrupted attempt is rolled back and retried.
func EnsureSchema(ctx context.Context, db *DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations/"+db.Dialect)
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, release, err := migrationDriver(ctx, db)
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}
	defer release()

	m, err := migrate.NewWithInstance("iofs", sourceDriver, db.Dialect, dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	err = m.Up()

	// Every migration is idempotent, so a dirty version is safe to rerun.
	var dirty migrate.ErrDirty
	if errors.As(err, &dirty) {
		if err := m.Force(previousVersion(sourceDriver, dirty.Version)); err != nil {
			return fmt.Errorf("reset dirty version %d: %w", dirty.Version, err)
		}
		err = m.Up()
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// migrationDriver returns the migrate driver for db plus a release func.
// The MySQL driver pins one pooled connection, which release hands back.
// Neither path closes the pool itself.
func migrationDriver(ctx context.Context, db *DB) (migratedb.Driver, func(), error) {
	switch db.Dialect {
	case DialectMySQL:
		conn, err := db.SQL.Conn(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("acquire connection: %w", err)
		}
		drv, err := migratemysql.WithConnection(ctx, conn, &migratemysql.Config{})
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return drv, func() { _ = drv.Close() }, nil
	case DialectSQLite:
		drv, err := migratesqlite.WithInstance(db.SQL, &migratesqlite.Config{})
		if err != nil {
			return nil, nil, err
		}
		return drv, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported dialect %q", db.Dialect)
	}
}

// previousVersion returns the migration version before v, or NilVersion when
// v is the first one.
func previousVersion(src source.Driver, v int) int {
	prev, err := src.Prev(uint(v))
	if err != nil {
		return migratedb.NilVersion
	}
	return int(prev)
}
