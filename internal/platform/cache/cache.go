// Package cache provides a Dragonfly/Redis client wrapper.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is not present.
var ErrMiss = errors.New("cache miss")

// Cache wraps a Redis/Dragonfly client. Keys are namespaced with Prefix.
type Cache struct {
	Client *redis.Client
	Prefix string
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// New creates a new cache client.
func New(ctx context.Context, url string) (*Cache, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}

	return &Cache{Client: client, Prefix: "records"}, nil
}

// Key joins parts under the cache prefix, e.g. "records:nav:viewer-1".
func (c *Cache) Key(parts ...string) string {
	if c.Prefix == "" {
		return strings.Join(parts, ":")
	}
	return c.Prefix + ":" + strings.Join(parts, ":")
}

// SetJSON stores v as JSON under key with the given TTL (0 means no expiry).
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := c.Client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// GetJSON decodes the JSON value under key into v. Returns ErrMiss when absent.
func (c *Cache) GetJSON(ctx context.Context, key string, v any) error {
	return decodeJSON(key, c.Client.Get(ctx, key), v)
}

// TouchJSON is GetJSON that also resets the key's expiry to ttl, so entries that
// keep being read do not expire. A zero ttl leaves the expiry untouched.
func (c *Cache) TouchJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if ttl <= 0 {
		return c.GetJSON(ctx, key, v)
	}
	return decodeJSON(key, c.Client.GetEx(ctx, key, ttl), v)
}

func decodeJSON(key string, cmd *redis.StringCmd, v any) error {
	data, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("getting %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// Close shuts down the cache client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the cache connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
