package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICache defines a general caching interface
type ICache[T any] interface {
	Get(context.Context, string) (*T, error)
	Set(context.Context, string, *T, ...time.Duration) error
	Delete(context.Context, ...string) error
}

// Cache implements ICache on redis with JSON values. A Cache built on a nil
// client is disabled: Get always misses and writes are no-ops.
type Cache[T any] struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCache creates a new Cache instance
func NewCache[T any](rc *redis.Client, prefix string, ttl time.Duration) *Cache[T] {
	return &Cache[T]{rc: rc, prefix: prefix, ttl: ttl}
}

// Enabled reports whether the cache has a client
func (c *Cache[T]) Enabled() bool {
	return c != nil && c.rc != nil
}

// Key defines the cache key
func (c *Cache[T]) Key(field string) string {
	if c.prefix != "" {
		return fmt.Sprintf("%s:%s", c.prefix, field)
	}
	return field
}

// Get retrieves a single item from cache; a miss returns nil, nil
func (c *Cache[T]) Get(ctx context.Context, field string) (*T, error) {
	if !c.Enabled() {
		return nil, nil
	}

	result, err := c.rc.Get(ctx, c.Key(field)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var row T
	if err = json.Unmarshal(result, &row); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return &row, nil
}

// Set saves a single item into cache
func (c *Cache[T]) Set(ctx context.Context, field string, data *T, expire ...time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	ttl := c.ttl
	if len(expire) > 0 {
		ttl = expire[0]
	}
	if err := c.rc.Set(ctx, c.Key(field), bytes, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete removes items from cache
func (c *Cache[T]) Delete(ctx context.Context, fields ...string) error {
	if !c.Enabled() || len(fields) == 0 {
		return nil
	}
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = c.Key(f)
	}
	if err := c.rc.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// TTL returns the remaining time to live of an item
func (c *Cache[T]) TTL(ctx context.Context, field string) (time.Duration, error) {
	if !c.Enabled() {
		return 0, nil
	}
	return c.rc.TTL(ctx, c.Key(field)).Result()
}
