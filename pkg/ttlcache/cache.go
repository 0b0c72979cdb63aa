// Package ttlcache provides an in-memory key-value cache where every entry
// lives for a fixed, absolute time-to-live.
//
// Reading an entry never extends its life. An entry written at T with a TTL
// of 15 minutes is gone at T+15m no matter how often it was read in between.
// Expired entries are removed lazily on access and, optionally, by a
// background sweeper.
package ttlcache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a concurrency-safe map with absolute per-entry expiry.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
	ttl     time.Duration
	now     func() time.Time
	onEvict func(K, V)

	sweepMu sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithClock replaces time.Now, mostly for tests.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) {
		if now != nil {
			c.now = now
		}
	}
}

// WithOnEvict registers a hook called whenever an entry leaves the cache,
// either because it expired or because it was deleted. The hook runs
// outside the cache lock.
func WithOnEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.onEvict = fn
	}
}

// New creates a cache whose entries expire ttl after they were set.
func New[K comparable, V any](ttl time.Duration, opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured time-to-live.
func (c *Cache[K, V]) TTL() time.Duration { return c.ttl }

// Set stores value under key. An existing entry is replaced and its
// deadline restarts from now.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Get returns the value stored under key if it has not expired yet.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.mu.Unlock()
		c.evicted(key, e.value)
		return zero, false
	}
	c.mu.Unlock()

	return e.value, true
}

// Delete removes key from the cache. Deleting a missing key is a no-op.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if ok {
		c.evicted(key, e.value)
	}
}

// Len reports the number of entries held, including expired entries that
// have not been swept yet.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes every expired entry and returns how many were removed.
func (c *Cache[K, V]) Sweep() int {
	type kv struct {
		key   K
		value V
	}

	now := c.now()
	var removed []kv

	c.mu.Lock()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed = append(removed, kv{key: k, value: e.value})
		}
	}
	c.mu.Unlock()

	for _, r := range removed {
		c.evicted(r.key, r.value)
	}
	return len(removed)
}

func (c *Cache[K, V]) evicted(key K, value V) {
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}
