// Package cache stores encoded layout snapshots, sessions and rendered
// scenario results.
//
// # Backends
//
//   - [NullCache]: stores nothing. Used when persistence is disabled.
//   - [FileCache]: JSON entries under a directory, for the CLI.
//   - [RedisCache]: a Redis server, for the HTTP API.
//   - [MongoCache]: a MongoDB collection with a TTL index, for the HTTP API.
//
// [Open] builds a backend from [Options] and wraps it so every lookup and
// write is reported to the registered observability store hooks.
//
// # Keys
//
// A [Keyer] names entries. [DefaultKeyer] produces readable keys for
// snapshots and sessions and hashed keys for scenario results;
// [ScopedKeyer] prefixes all of them for per-tenant isolation.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired key is a miss, not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists the live keys that start with prefix, in no particular
	// order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases the backend's resources.
	Close() error
}
