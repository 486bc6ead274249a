// Package database is the relational storage adapter: it owns the connection
// pool, bootstraps the clicks schema and implements the ClickStore port.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Dialects understood by Open. They double as database/sql driver names.
const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite"
)

// Options describes how to reach the store.
type Options struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	// Path is the SQLite database file; ignored for MySQL.
	Path string
	// MaxConns caps open connections. Callers beyond the cap wait for a free
	// connection instead of failing.
	MaxConns int
}

// DB wraps the pooled *sql.DB together with the dialect it speaks.
type DB struct {
	SQL     *sql.DB
	Dialect string
}

// Open creates the connection pool and verifies the store answers.
// A half-open pool is closed before the error is returned.
func Open(ctx context.Context, opts Options) (*DB, error) {
	dsn, err := opts.dsn()
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Driver, err)
	}
	configurePool(sqlDB, opts)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Driver, err)
	}

	return &DB{SQL: sqlDB, Dialect: opts.Driver}, nil
}

// Close releases every pooled connection.
func (db *DB) Close() error {
	if err := db.SQL.Close(); err != nil {
		return fmt.Errorf("close %s: %w", db.Dialect, err)
	}
	return nil
}

func (o Options) dsn() (string, error) {
	switch o.Driver {
	case DialectMySQL:
		return mysqlDSN(o), nil
	case DialectSQLite:
		return sqliteDSN(o.Path), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", o.Driver)
	}
}

func mysqlDSN(o Options) string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.DBName = o.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	// Session zone must match Loc or TIMESTAMP columns shift on read.
	cfg.Params = map[string]string{"time_zone": "'+00:00'"}
	cfg.Timeout = 5 * time.Second
	return cfg.FormatDSN()
}

// sqliteDSN enables busy timeout, synchronous NORMAL and a 64MB cache. WAL is
// skipped for in-memory databases where it does not apply.
func sqliteDSN(path string) string {
	pragmas := "_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=cache_size(-64000)"
	if !strings.Contains(path, "mode=memory") {
		pragmas = "_pragma=journal_mode(WAL)&" + pragmas
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + path + sep + pragmas
}

func configurePool(sqlDB *sql.DB, opts Options) {
	// SQLite allows a single writer; one connection avoids "database is locked".
	if opts.Driver == DialectSQLite {
		sqlDB.SetMaxOpenConns(1)
		return
	}

	maxConns := opts.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}
