package shared

import (
	"context"
	"time"
)

// IdempotencyStore records keys of jobs that already ran so a re-run skips them.
// The scheduler uses it to post interest at most once per account per day.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL
	// Returns true if the key was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release forgets a key so the work it guarded can be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
