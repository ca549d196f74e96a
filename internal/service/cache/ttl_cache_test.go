package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCacheExpiry(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	c := NewTTLCache[string, float64](30 * time.Second).WithClock(clk.Now)

	c.Put(ctx, "quote:AAPL", 189.5)

	clk.Advance(29 * time.Second)
	v, ok := c.Get(ctx, "quote:AAPL")
	assert.True(t, ok)
	assert.Equal(t, 189.5, v)

	clk.Advance(time.Second)
	_, ok = c.Get(ctx, "quote:AAPL")
	assert.False(t, ok, "entry must expire once its age reaches the ttl")
	assert.Equal(t, 0, c.Len())
}

func TestTTLCacheMissOnUnknownKey(t *testing.T) {
	c := NewTTLCache[string, int](time.Minute)
	_, ok := c.Get(context.Background(), "nope")
	assert.False(t, ok)
}

func TestTTLCacheNonPositiveTTL(t *testing.T) {
	c := NewTTLCache[string, int](0)
	c.Put(context.Background(), "k", 1)
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestTTLCacheOverwriteResetsAge(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	c := NewTTLCache[string, int](10 * time.Second).WithClock(clk.Now)

	c.Put(ctx, "k", 1)
	clk.Advance(8 * time.Second)
	c.Put(ctx, "k", 2)
	clk.Advance(8 * time.Second)

	v, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestTTLCacheUpdateKeepsAge(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	c := NewTTLCache[string, int](10 * time.Second).WithClock(clk.Now)

	assert.False(t, c.Update(ctx, "k", func(v int) int { return v + 1 }))

	c.Put(ctx, "k", 1)
	for i := 0; i < 3; i++ {
		clk.Advance(3 * time.Second)
		assert.True(t, c.Update(ctx, "k", func(v int) int { return v + 1 }))
	}
	v, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	clk.Advance(time.Second)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok, "updates must not extend the entry past its original ttl")
	assert.False(t, c.Update(ctx, "k", func(v int) int { return v }))
}

func TestTTLCacheCallersGetCopies(t *testing.T) {
	ctx := context.Background()
	clone := func(s []string) []string { return append([]string(nil), s...) }
	c := NewTTLCache[string, []string](time.Minute).WithCloner(clone)

	in := []string{"a", "b"}
	c.Put(ctx, "k", in)
	in[0] = "mutated"

	got, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)

	got[1] = "mutated"
	again, _ := c.Get(ctx, "k")
	assert.Equal(t, []string{"a", "b"}, again)
}

func TestTTLCacheConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[string, int](time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k%d", j%8)
				c.Put(ctx, key, i)
				c.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 8, c.Len())
}
