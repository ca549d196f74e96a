package cache

import "context"

// Cache stores values that expire a fixed time after they were put.
// Get returns a copy of the stored value; a miss means absent or expired.
type Cache[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Put(ctx context.Context, key K, value V)
	// Update replaces a live value with fn(value) and keeps the time it was
	// stored, so the entry still expires on schedule. It reports false and
	// leaves the cache alone when key is absent or expired.
	Update(ctx context.Context, key K, fn func(V) V) bool
}
