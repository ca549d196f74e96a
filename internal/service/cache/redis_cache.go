package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

type redisEnvelope[V any] struct {
	V        V     `json:"v"`
	StoredAt int64 `json:"at"` // unix nanos
}

// RedisCache is a shared Cache tier. Values are JSON encoded and expire in
// redis after ttl. Redis errors are reported through OnError and treated as
// misses.
type RedisCache[V any] struct {
	cli     *redis.Client
	prefix  string
	ttl     time.Duration
	now     func() time.Time
	OnError func(op string, err error)
}

func NewRedisCache[V any](cli *redis.Client, prefix string, ttl time.Duration) *RedisCache[V] {
	return &RedisCache[V]{cli: cli, prefix: prefix, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for staleness checks.
func (r *RedisCache[V]) WithClock(now func() time.Time) *RedisCache[V] {
	r.now = now
	return r
}

func (r *RedisCache[V]) Get(ctx context.Context, key string) (V, bool) {
	v, _, ok := r.GetEntry(ctx, key)
	return v, ok
}

// GetEntry returns the value and the time it was originally stored.
func (r *RedisCache[V]) GetEntry(ctx context.Context, key string) (V, time.Time, bool) {
	var zero V
	b, err := r.cli.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.report("get", err)
		}
		return zero, time.Time{}, false
	}
	var env redisEnvelope[V]
	if err := json.Unmarshal(b, &env); err != nil {
		r.report("decode", err)
		return zero, time.Time{}, false
	}
	storedAt := time.Unix(0, env.StoredAt)
	if r.now().Sub(storedAt) >= r.ttl {
		return zero, time.Time{}, false
	}
	return env.V, storedAt, true
}

func (r *RedisCache[V]) Put(ctx context.Context, key string, value V) {
	r.PutAt(ctx, key, value, r.now())
}

// PutAt stores value as if it had been put at storedAt. The redis expiry is
// the remainder of the ttl; nothing is written when that is already spent.
func (r *RedisCache[V]) PutAt(ctx context.Context, key string, value V, storedAt time.Time) {
	remaining := r.ttl - r.now().Sub(storedAt)
	if remaining <= 0 {
		return
	}
	b, err := json.Marshal(redisEnvelope[V]{V: value, StoredAt: storedAt.UnixNano()})
	if err != nil {
		r.report("encode", err)
		return
	}
	if err := r.cli.Set(ctx, r.prefix+key, b, remaining).Err(); err != nil {
		r.report("set", err)
	}
}

func (r *RedisCache[V]) Update(ctx context.Context, key string, fn func(V) V) bool {
	v, storedAt, ok := r.GetEntry(ctx, key)
	if !ok {
		return false
	}
	r.PutAt(ctx, key, fn(v), storedAt)
	return true
}

func (r *RedisCache[V]) report(op string, err error) {
	if r.OnError != nil {
		r.OnError(op, err)
	}
}

var _ Cache[string, int] = (*RedisCache[int])(nil)
