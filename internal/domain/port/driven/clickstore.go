// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"

	"github.com/ericfisherdev/clickcounter/internal/domain/model"
)

// ClickStore defines the driven port for persisting clicks.
// There is no update or delete path: clicks are append-only.
type ClickStore interface {
	// Ping runs a trivial liveness query against the store.
	Ping(ctx context.Context) error
	// Record inserts one click, letting the store assign ID and timestamp.
	Record(ctx context.Context) error
	// ListRecent returns at most limit clicks, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.Click, error)
}
