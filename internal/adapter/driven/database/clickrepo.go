package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/clickcounter/internal/domain/model"
	"github.com/ericfisherdev/clickcounter/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ClickStore = (*ClickRepo)(nil)

// ClickRepo is the SQL implementation of the ClickStore port interface.
type ClickRepo struct {
	db *DB
}

// NewClickRepo creates a new ClickRepo backed by the given DB.
func NewClickRepo(db *DB) *ClickRepo {
	return &ClickRepo{db: db}
}

// Ping runs SELECT 1 on a pooled connection.
func (r *ClickRepo) Ping(ctx context.Context) error {
	var one int
	if err := r.db.SQL.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("ping clicks store: %w", err)
	}
	return nil
}

// Record inserts a single row with every column left to its default.
func (r *ClickRepo) Record(ctx context.Context) error {
	query := `INSERT INTO clicks () VALUES ()`
	if r.db.Dialect == DialectSQLite {
		query = `INSERT INTO clicks DEFAULT VALUES`
	}

	if _, err := r.db.SQL.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

// ListRecent returns up to limit clicks ordered by created_at DESC, id DESC.
func (r *ClickRepo) ListRecent(ctx context.Context, limit int) ([]model.Click, error) {
	const query = `SELECT id, created_at FROM clicks ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := r.db.SQL.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list clicks: %w", err)
	}
	defer rows.Close()

	var result []model.Click
	for rows.Next() {
		var c model.Click
		var createdAt string
		if err := rows.Scan(&c.ID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan click: %w", err)
		}
		c.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for click %d: %w", c.ID, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clicks: %w", err)
	}
	return result, nil
}

// Close closes the underlying pool.
func (r *ClickRepo) Close() error {
	return r.db.Close()
}

// parseTime accepts the layouts SQLite CURRENT_TIMESTAMP and the drivers'
// time.Time-to-string conversion produce. Results are always UTC.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
