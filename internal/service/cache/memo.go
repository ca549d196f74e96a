package cache

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"
)

// Loader fetches a value on a cache miss.
type Loader[V any] func(ctx context.Context) (V, error)

// Memo fronts a Cache with per-key single-flight loading, so concurrent misses
// for the same key share one upstream call. Loaded values are cached before
// they are returned; errors are never cached.
type Memo[V any] struct {
	cache Cache[string, V]
	group singleflight.Group
	clone func(V) V
}

func NewMemo[V any](c Cache[string, V]) *Memo[V] {
	return &Memo[V]{cache: c}
}

// WithCloner copies values handed to callers that joined a shared flight.
func (m *Memo[V]) WithCloner(clone func(V) V) *Memo[V] {
	m.clone = clone
	return m
}

// Get returns the cached value for key or loads it. hit reports whether the
// value came from the cache without a load.
func (m *Memo[V]) Get(ctx context.Context, key string, load Loader[V]) (v V, hit bool, err error) {
	if v, ok := m.cache.Get(ctx, key); ok {
		return v, true, nil
	}

	for attempt := 0; ; attempt++ {
		ch := m.group.DoChan(key, func() (any, error) {
			if v, ok := m.cache.Get(ctx, key); ok {
				return v, nil
			}
			v, err := load(ctx)
			if err != nil {
				return v, err
			}
			m.cache.Put(ctx, key, v)
			return v, nil
		})

		var zero V
		select {
		case <-ctx.Done():
			return zero, false, ctx.Err()
		case r := <-ch:
			if r.Err != nil {
				// the flight we joined was cancelled by its owner; ours is still live
				if r.Shared && attempt == 0 && ctx.Err() == nil && isContextErr(r.Err) {
					continue
				}
				return zero, false, r.Err
			}
			v := r.Val.(V)
			if r.Shared && m.clone != nil {
				v = m.clone(v)
			}
			return v, false, nil
		}
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
