package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/admin_dashboard/pkg/logging"
)

// Commands is the slice of the redis client the cache relies on.
type Commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Cache is a JSON read-through cache. Failures are logged and treated as
// misses, so a broken redis never fails the caller. A nil *Cache passes
// everything through to the loader.
type Cache struct {
	client Commands
	prefix string
	ttl    time.Duration
}

func New(client Commands, prefix string, ttl time.Duration) *Cache {
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}

func (c *Cache) key(k string) string { return c.prefix + k }

// Get reports whether key was found and decoded into dst.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	if c == nil || c.client == nil {
		return false
	}
	l := logging.FromContext(ctx).With("component", "cache", "key", key)

	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			l.Debug("cache_miss")
		} else {
			l.Error("cache_get_error", "error", err)
		}
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		l.Error("cache_decode_error", "error", err)
		return false
	}

	l.Debug("cache_hit")
	return true
}

func (c *Cache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}
	l := logging.FromContext(ctx).With("component", "cache", "key", key)

	data, err := json.Marshal(value)
	if err != nil {
		l.Error("cache_encode_error", "error", err)
		return
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		l.Error("cache_set_error", "error", err)
		return
	}
	l.Debug("cache_set")
}

func (c *Cache) Remove(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		logging.FromContext(ctx).Error("cache_remove_error", "component", "cache", "keys", keys, "error", err)
	}
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result. Loader errors are returned untouched and nothing is cached.
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if c.Get(ctx, key, &cached) {
		return cached, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	c.Set(ctx, key, v)
	return v, nil
}
