package cachemanager

import "time"

// ReadThroughCache computes values on a miss and remembers successful results.
// Failures are never cached.
type ReadThroughCache[K ~string, V any] struct {
	cache CacheManager[K, V]
	fn    func(key K) (V, error)
	ttl   time.Duration
}

// NewReadThroughCache wraps cache with the loader fn.
func NewReadThroughCache[K ~string, V any](cache CacheManager[K, V], ttl time.Duration, fn func(key K) (V, error)) *ReadThroughCache[K, V] {
	return &ReadThroughCache[K, V]{cache: cache, fn: fn, ttl: ttl}
}

// Get returns the cached value or loads and stores it.
func (r *ReadThroughCache[K, V]) Get(key K) (V, error) {
	if v, ok := r.cache.Get(key); ok {
		return v, nil
	}
	v, err := r.fn(key)
	if err != nil {
		return v, err
	}
	r.cache.Set(key, v, r.ttl)
	return v, nil
}
