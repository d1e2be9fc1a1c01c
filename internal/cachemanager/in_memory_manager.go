package cachemanager

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/scribe/internal/log"
)

// InMemoryCacheManager is a CacheManager backed by go-cache.
type InMemoryCacheManager[K ~string, V any] struct {
	useCase string
	cache   *gocache.Cache
}

// NewInMemoryCacheManager creates a cache; useCase only labels log lines.
func NewInMemoryCacheManager[K ~string, V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
	}
}

// Get returns the cached value for key.
func (c *InMemoryCacheManager[K, V]) Get(key K) (V, bool) {
	var zero V
	raw, found := c.cache.Get(string(key))
	if !found {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		log.Error(log.CatCache, "cached value has unexpected type", "cache", c.useCase, "key", key)
		return zero, false
	}
	return v, true
}

// Set stores value under key. A ttl of 0 uses the cache default.
func (c *InMemoryCacheManager[K, V]) Set(key K, value V, ttl time.Duration) {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(string(key), value, ttl)
}

// Delete removes keys.
func (c *InMemoryCacheManager[K, V]) Delete(keys ...K) {
	for _, key := range keys {
		c.cache.Delete(string(key))
	}
}

// Flush removes every entry.
func (c *InMemoryCacheManager[K, V]) Flush() {
	c.cache.Flush()
	log.Debug(log.CatCache, "cache flushed", "cache", c.useCase)
}

// Len counts entries, including expired ones not yet swept.
func (c *InMemoryCacheManager[K, V]) Len() int {
	return c.cache.ItemCount()
}
