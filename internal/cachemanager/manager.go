// Package cachemanager provides an expiring in-memory cache and a
// read-through wrapper used for memoising compiled artefacts.
package cachemanager

import "time"

const (
	// DefaultExpiration is the TTL applied when callers pass 0.
	DefaultExpiration = 10 * time.Minute
	// DefaultCleanupInterval is how often expired entries are swept.
	DefaultCleanupInterval = 30 * time.Minute
	// NoExpiration keeps an entry until it is deleted or flushed.
	NoExpiration time.Duration = -1
)

// CacheManager stores values by string-like key.
type CacheManager[K ~string, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(keys ...K)
	Flush()
	Len() int
}
