package audit

import (
	"context"
	"time"
)

// Backend persists audit events. Implementations must be safe for
// concurrent use.
type Backend interface {
	// Write appends a single event to the log.
	Write(ctx context.Context, ev *Event) error

	// Query returns events matching the filters, newest first.
	Query(ctx context.Context, filters Filters) ([]Event, error)

	// DeleteBefore removes events older than the cutoff and reports how
	// many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases any underlying resources.
	Close() error
}
