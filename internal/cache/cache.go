// Package cache is the KV adapter holding preprocessed story blobs: a
// get/set interface over an opaque value, backed by an in-process LRU,
// Redis, or a local buntdb file, selected by FIG_CACHE_URL's scheme.
package cache

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Store is the KV interface the scheduler collection and HTTP surface
// consume; the preprocessed story blob itself is treated as opaque.
type Store interface {
	// Get looks up key, returning ok=false on a cache miss (not an
	// error).
	Get(ctx context.Context, key string) (value interface{}, ok bool, err error)
	// Set stores value under key, at the backend's discretion for how
	// long it is retained.
	Set(ctx context.Context, key string, value interface{}) error
}

// DefaultMemorySize is used for a bare "memory://" URL with no explicit
// capacity.
const DefaultMemorySize = 1024

// Open parses a FIG_CACHE_URL value and returns the Store it selects:
//
//	memory://             in-process LRU, DefaultMemorySize entries
//	memory://512          in-process LRU, 512 entries
//	redis://host:port/db  redis-backed, SELECTed to db
//	file:///path/to/db    buntdb-backed, persisted across restarts
//	file://               buntdb-backed, in-memory
//
// An empty raw URL defaults to an unbounded-ish default-size memory
// store, matching a development setup with no cache configured.
func Open(raw string) (Store, error) {
	if raw == "" {
		return newMemoryStore(DefaultMemorySize)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("cache: parsing %q: %w", raw, err)
	}

	switch u.Scheme {
	case "memory":
		size := DefaultMemorySize
		if u.Host != "" {
			n, err := strconv.Atoi(u.Host)
			if err != nil {
				return nil, fmt.Errorf("cache: parsing memory size from %q: %w", raw, err)
			}
			size = n
		}
		return newMemoryStore(size)
	case "redis":
		return newRedisStore(u)
	case "file":
		return newFileStore(u.Host + u.Path)
	default:
		return nil, fmt.Errorf("cache: unknown cache scheme %q", u.Scheme)
	}
}
