package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"placement/internal/platform/config"
	"placement/internal/posting/models"
)

// Redis key prefix for cached posting lists
const listKeyPrefix = "postings:list:"

// ListKey is the key holding the cached list for kind.
func ListKey(kind models.Kind) string {
	return listKeyPrefix + string(kind)
}

// Redis caches posting lists as JSON with a TTL. Writes invalidate the key.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// Option configures a Redis cache.
type Option func(*Redis)

// WithTTL overrides the default one minute expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *Redis) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// Dial connects to the configured Redis and builds the cache on top of it.
// It returns nil, nil when no URL is configured.
func Dial(ctx context.Context, cfg config.RedisConfig, opts ...Option) (*Redis, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	ro, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		ro.PoolSize = cfg.PoolSize
	}
	ro.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		ro.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		ro.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		ro.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(ro)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedis(client, opts...), nil
}

func NewRedis(client *redis.Client, opts ...Option) *Redis {
	c := &Redis{client: client, ttl: time.Minute}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Get decodes the cached list into dst. Returns false on a miss.
func (c *Redis) Get(ctx context.Context, kind models.Kind, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, ListKey(kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// A stale or foreign payload is a miss; drop it.
		_ = c.client.Del(ctx, ListKey(kind)).Err()
		return false, nil
	}
	return true, nil
}

func (c *Redis) Set(ctx context.Context, kind models.Kind, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s list: %w", kind, err)
	}
	return c.client.Set(ctx, ListKey(kind), raw, c.ttl).Err()
}

// Invalidate drops the cached lists for the given kinds.
func (c *Redis) Invalidate(ctx context.Context, kinds ...models.Kind) error {
	if len(kinds) == 0 {
		return nil
	}
	keys := make([]string, 0, len(kinds))
	for _, k := range kinds {
		keys = append(keys, ListKey(k))
	}
	return c.client.Del(ctx, keys...).Err()
}

// Ping backs the /healthz check.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Redis) Close(context.Context) error {
	return c.client.Close()
}

// Noop never hits. Used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context, models.Kind, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, models.Kind, any) error { return nil }
func (Noop) Invalidate(context.Context, ...models.Kind) error { return nil }
