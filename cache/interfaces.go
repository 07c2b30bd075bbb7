// Package cache provides a persisted key-value cache for catalog lookups
// with lazy TTL-based expiration.
package cache

import (
	"encoding/json"
	"time"
)

// DefaultTTL is how long a catalog entry stays fresh.
const DefaultTTL = 24 * time.Hour

// Entry represents a cached entry with metadata
type Entry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	FetchedAt time.Time       `json:"timestamp"`
}

// Fresh reports whether the entry is still inside its TTL at now.
// An entry is valid while now - FetchedAt < ttl; ttl <= 0 disables the check.
func (e *Entry) Fresh(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return true
	}
	return now.Sub(e.FetchedAt) < ttl
}

func (e *Entry) hasData() bool {
	return !e.FetchedAt.IsZero() && len(e.Data) > 0 && string(e.Data) != "null"
}

// Reader defines the interface for reading cache entries
type Reader interface {
	// Read retrieves a cache entry by key with TTL validation.
	// Returns the entry and true if found and not expired, false otherwise.
	// Expired entries are left in place.
	Read(key string, maxAge time.Duration) (*Entry, bool)
}

// Writer defines the interface for writing cache entries
type Writer interface {
	// Write stores a cache entry, overwriting unconditionally and stamping
	// FetchedAt with the current time.
	Write(key string, entry *Entry) error
}

// ReadWriter combines both cache operations
type ReadWriter interface {
	Reader
	Writer
}

// KeyGenerator generates cache keys from catalog ids
type KeyGenerator interface {
	KeyFor(catalogID string) string
}

// Cache is the main interface that combines all cache operations
type Cache interface {
	ReadWriter
	KeyGenerator
}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time
