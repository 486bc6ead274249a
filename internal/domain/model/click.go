package model

import "time"

// Click is a single button press. Rows are immutable once stored and IDs
// increase in insertion order.
type Click struct {
	ID        int64
	CreatedAt time.Time
}
