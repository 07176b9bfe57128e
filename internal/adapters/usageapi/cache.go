package usageapi

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Cache stores successful response bodies keyed by request URL.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Add(ctx context.Context, key string, body []byte)
}

// memoryCache is a size-bounded, per-process cache.
type memoryCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryCache returns an in-process LRU whose entries expire after ttl.
// A non-positive ttl never expires entries.
func NewMemoryCache(size int, ttl time.Duration) Cache {
	return &memoryCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	return c.lru.Get(key)
}

func (c *memoryCache) Add(_ context.Context, key string, body []byte) {
	c.lru.Add(key, body)
}

// DefaultRedisPrefix namespaces cache keys in a shared Redis.
const DefaultRedisPrefix = "vcdash:usage:"

// RedisCache shares cached responses between replicas.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
	onErr  func(error)
}

// NewRedisCache returns a Cache backed by client. Entries expire after ttl;
// zero keeps them until evicted by Redis.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisCache{client: client, ttl: ttl, prefix: prefix}
}

// OnError registers a hook for Redis failures. Failures never fail a fetch;
// the request falls through to the upstream.
func (c *RedisCache) OnError(fn func(error)) *RedisCache {
	c.onErr = fn
	return c
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.report(err)
		}
		return nil, false
	}
	return body, true
}

func (c *RedisCache) Add(ctx context.Context, key string, body []byte) {
	if err := c.client.Set(ctx, c.prefix+key, body, c.ttl).Err(); err != nil {
		c.report(err)
	}
}

func (c *RedisCache) report(err error) {
	if c.onErr != nil {
		c.onErr(err)
	}
}
