// Package cache stores decoded images so repeated runs skip PPM parsing.
//
// Values are opaque byte slices (the pipeline stores grids in their binary
// form). Three backends are provided: [NullCache] for --no-cache,
// [FileCache] for the CLI and [RedisCache] for the HTTP server when several
// instances share work. [Prefixed] namespaces any backend.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a decoded grid stays cached.
const DefaultTTL = 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
