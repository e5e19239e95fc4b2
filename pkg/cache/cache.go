// Package cache stores pipeline intermediates (repository snapshots, layouts,
// rendered artifacts, photo thumbnails) behind a small byte-oriented
// interface.
//
// Implementations:
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for `kinfolk serve` deployments
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Keys come from a [Keyer] so every backend agrees on naming. Values carry
// their own TTL; expired entries read as misses.
package cache

import (
	"context"
	"time"
)

// Default lifetimes per entry kind.
const (
	// TTLSnapshot bounds how stale a cached repository snapshot may be.
	TTLSnapshot = 10 * time.Minute

	// TTLLayout is keyed by snapshot hash, so it only expires to bound disk use.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact is keyed by layout hash and render options.
	TTLArtifact = 7 * 24 * time.Hour

	// TTLPhoto keeps fetched thumbnails for a month.
	TTLPhoto = 30 * 24 * time.Hour

	// TTLHTTP is the default for raw HTTP responses.
	TTLHTTP = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the value and true on a hit. Misses and expired entries
	// return (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}
