// Package cache stores computed routing results between runs.
//
// A [Cache] is a byte-oriented key/value store with per-entry TTL. The
// pipeline stores solver output under keys built by a [Keyer], so an
// unchanged topology, algorithm and source never solve twice.
//
// # Backends
//
//   - [NullCache]: never stores anything (--no-cache, tests)
//   - [FileCache]: hash-sharded JSON files under the XDG cache directory
//   - [RedisCache]: a shared Redis instance for the HTTP server
//
// Backends that can drop all of their entries implement [Clearer].
//
// # Errors
//
// A miss is reported by the boolean result of Get, never as an error.
// Transient backend failures are wrapped with [Retryable]; callers decide
// whether a cache error is fatal (the pipeline only logs them).
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for serialized results.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can remove every entry they own.
type Clearer interface {
	// Clear removes all entries and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}
