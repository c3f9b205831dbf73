package ports

import (
	"context"
	"time"
)

// ExpiringCache is the volatile key-value capability behind rate-limit
// counters, idempotency records and recent-activity counters. Any store with
// per-key TTL semantics satisfies it. Losing its contents degrades rate
// limiting and dedup guarantees but must never corrupt the durable ledger.
type ExpiringCache interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetWithTTL stores value under key, expiring after ttl.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Increment adds one to the counter at key and returns the new count.
	// The ttl is applied only when the key is created by this call, so the
	// window is fixed from the first increment (fixed-window semantics).
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// TTL returns the remaining lifetime of key, or zero when absent.
	TTL(ctx context.Context, key string) (time.Duration, error)
}
