package cache

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

var ErrMiss = goredis.Nil

type Options = goredis.UniversalOptions

// Cache is the small key/value surface the service needs from Redis.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Close() error
}

type redisCache struct {
	prefix string
	conn   goredis.UniversalClient
}

// NewRedis connects and pings. Every key is namespaced with prefix.
func NewRedis(ctx context.Context, prefix string, opts *Options) (Cache, error) {
	c := goredis.NewUniversalClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &redisCache{prefix: prefix, conn: c}, nil
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return r.conn.Get(ctx, r.prefix+key).Bytes()
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.conn.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *redisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	return r.conn.Del(ctx, full...).Err()
}

func (r *redisCache) Close() error {
	return r.conn.Close()
}
