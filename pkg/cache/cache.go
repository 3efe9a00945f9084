// Package cache provides artifact caching for the composition pipeline.
//
// Rendered markup and preview artifacts are pure functions of the manifest
// and the render options, so they cache well: the CLI keys entries by a
// content hash of the manifest plus the options that influenced the
// output. Entries are derived state only - deleting the cache is always
// safe.
package cache

import (
	"context"
	"errors"
	"time"
)

// TTLs for the different entry kinds.
const (
	// TTLMarkup is the lifetime of cached markup builds.
	TTLMarkup = 7 * 24 * time.Hour

	// TTLArtifact is the lifetime of cached preview artifacts (dot, svg).
	TTLArtifact = 7 * 24 * time.Hour
)

// ErrCacheMiss is returned by helpers that require a hit.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores opaque bytes under string keys with optional expiry.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
