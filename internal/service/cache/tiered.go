package cache

import "context"

// Tiered is a two-level cache: process memory in front of redis.
// Writes go to both levels; redis hits are copied into memory with their
// original age so the TTL is not extended.
type Tiered[V any] struct {
	l1 *TTLCache[string, V]
	l2 *RedisCache[V]
}

func NewTiered[V any](l1 *TTLCache[string, V], l2 *RedisCache[V]) *Tiered[V] {
	return &Tiered[V]{l1: l1, l2: l2}
}

func (t *Tiered[V]) Get(ctx context.Context, key string) (V, bool) {
	if v, ok := t.l1.Get(ctx, key); ok {
		return v, true
	}
	v, storedAt, ok := t.l2.GetEntry(ctx, key)
	if !ok {
		return v, false
	}
	t.l1.PutAt(key, v, storedAt)
	return v, true
}

func (t *Tiered[V]) Put(ctx context.Context, key string, value V) {
	t.l2.Put(ctx, key, value)
	t.l1.Put(ctx, key, value)
}

// Update rewrites both levels with the age of whichever level holds the
// entry, memory first.
func (t *Tiered[V]) Update(ctx context.Context, key string, fn func(V) V) bool {
	v, storedAt, ok := t.l1.GetEntry(key)
	if !ok {
		if v, storedAt, ok = t.l2.GetEntry(ctx, key); !ok {
			return false
		}
	}
	v = fn(v)
	t.l2.PutAt(ctx, key, v, storedAt)
	t.l1.PutAt(key, v, storedAt)
	return true
}

var _ Cache[string, int] = (*Tiered[int])(nil)
