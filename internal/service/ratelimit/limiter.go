package ratelimit

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// Limiter holds named token buckets. A bucket is created on first use of its
// key with the capacity and rate given at that call.
type Limiter struct {
	mu  sync.Mutex
	m   map[string]*bucket
	now func() time.Time
}

func New() *Limiter { return &Limiter{m: make(map[string]*bucket), now: time.Now} }

// WithClock replaces the time source.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

func (l *Limiter) get(key string, capacity, refillPerSec float64, now time.Time) *bucket {
	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
		l.m[key] = b
	}
	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}
	return b
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.get(key, capacity, refillPerSec, l.now())
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Reserve takes a token for key now, going into debt if needed, and returns
// how long the caller must wait before using it. A non-positive rate means
// unlimited.
func (l *Limiter) Reserve(key string, capacity, refillPerSec float64) time.Duration {
	if refillPerSec <= 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.get(key, capacity, refillPerSec, l.now())
	b.tokens--
	if b.tokens >= 0 {
		return 0
	}
	return time.Duration(-b.tokens / b.refillRate * float64(time.Second))
}

func (l *Limiter) cancel(key string) {
	l.mu.Lock()
	if b, ok := l.m[key]; ok {
		b.tokens++
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
	}
	l.mu.Unlock()
}

// Wait blocks until a token for key is available or ctx is done. Waiters are
// served in arrival order.
func (l *Limiter) Wait(ctx context.Context, key string, capacity, refillPerSec float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d := l.Reserve(key, capacity, refillPerSec)
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		l.cancel(key)
		return ctx.Err()
	}
}

// Bucket is a handle on one key with fixed parameters.
type Bucket struct {
	l        *Limiter
	key      string
	capacity float64
	rate     float64
}

// Bucket returns a handle for key. rate is tokens per second; burst is the
// bucket capacity and is raised to 1 when smaller.
func (l *Limiter) Bucket(key string, rate float64, burst int) *Bucket {
	if burst < 1 {
		burst = 1
	}
	return &Bucket{l: l, key: key, capacity: float64(burst), rate: rate}
}

func (b *Bucket) Wait(ctx context.Context) error {
	return b.l.Wait(ctx, b.key, b.capacity, b.rate)
}

func (b *Bucket) Allow() bool {
	if b.rate <= 0 {
		return true
	}
	return b.l.Allow(b.key, b.capacity, b.rate)
}
