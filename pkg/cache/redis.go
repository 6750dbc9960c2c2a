package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

type redisCache struct {
	client *redis.Client
	prefix string
}

type RedisOption func(*redisCache)

// WithKeyPrefix namespaces every key, so several deployments can share one
// Redis database.
func WithKeyPrefix(prefix string) RedisOption {
	return func(c *redisCache) { c.prefix = prefix }
}

// NewRedisCache creates a new instance of Redis cache implementing Cache interface.
// Stream handles and memoized lookups stored here are visible to every
// replica pointed at the same database.
func NewRedisCache(addr, password string, db int, opts ...RedisOption) (Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}

	c := &redisCache{client: rdb}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, expiration).Err()
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (c *redisCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
