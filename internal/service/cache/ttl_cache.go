package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	v        V
	storedAt time.Time
}

// TTLCache is an in-memory Cache safe for concurrent use. Expired entries are
// dropped lazily on read. Size is unbounded.
type TTLCache[K comparable, V any] struct {
	mu    sync.RWMutex
	m     map[K]entry[V]
	ttl   time.Duration
	now   func() time.Time
	clone func(V) V
}

// NewTTLCache returns a cache whose entries live for ttl. A non-positive ttl
// makes every Get a miss.
func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{m: make(map[K]entry[V]), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source.
func (c *TTLCache[K, V]) WithClock(now func() time.Time) *TTLCache[K, V] {
	c.now = now
	return c
}

// WithCloner sets a deep-copy function for values that hold references.
func (c *TTLCache[K, V]) WithCloner(clone func(V) V) *TTLCache[K, V] {
	c.clone = clone
	return c
}

// TTL returns the configured lifetime.
func (c *TTLCache[K, V]) TTL() time.Duration { return c.ttl }

func (c *TTLCache[K, V]) Get(_ context.Context, key K) (V, bool) {
	v, _, ok := c.GetEntry(key)
	return v, ok
}

// GetEntry is Get that also reports when the value was stored.
func (c *TTLCache[K, V]) GetEntry(key K) (V, time.Time, bool) {
	var zero V
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return zero, time.Time{}, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.mu.Lock()
		if cur, ok := c.m[key]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(c.m, key)
		}
		c.mu.Unlock()
		return zero, time.Time{}, false
	}
	return c.copy(e.v), e.storedAt, true
}

func (c *TTLCache[K, V]) Put(_ context.Context, key K, value V) {
	c.PutAt(key, value, c.now())
}

// PutAt stores value as if it had been put at storedAt. Tiered caches use it
// to keep the original age when backfilling.
func (c *TTLCache[K, V]) PutAt(key K, value V, storedAt time.Time) {
	c.mu.Lock()
	c.m[key] = entry[V]{v: c.copy(value), storedAt: storedAt}
	c.mu.Unlock()
}

func (c *TTLCache[K, V]) Update(_ context.Context, key K, fn func(V) V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok || c.now().Sub(e.storedAt) >= c.ttl {
		return false
	}
	c.m[key] = entry[V]{v: c.copy(fn(c.copy(e.v))), storedAt: e.storedAt}
	return true
}

// Delete removes key if present.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

// Len counts stored entries, including expired ones not yet evicted.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *TTLCache[K, V]) copy(v V) V {
	if c.clone == nil {
		return v
	}
	return c.clone(v)
}

var _ Cache[string, int] = (*TTLCache[string, int])(nil)
