package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache is a JSON cache and publisher on top of redis. A RedisCache
// without a client is valid: reads miss and writes are dropped.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// New connects to redisURL. An empty URL yields a disabled cache. A failed
// ping is returned together with a disabled cache so callers can carry on.
func New(ctx context.Context, redisURL string, logger *zap.Logger) (*RedisCache, error) {
	if redisURL == "" {
		return &RedisCache{logger: logger}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return &RedisCache{logger: logger}, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return &RedisCache{logger: logger}, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisCache{client: client, logger: logger}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, logger *zap.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

func (c *RedisCache) Available() bool {
	return c != nil && c.client != nil
}

// Get decodes the value at key into dest and reports whether it was found.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.Available() {
		return false, nil
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.Available() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *RedisCache) Publish(ctx context.Context, channel string, message interface{}) error {
	if !c.Available() {
		return nil
	}
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, channel, data).Err()
}

func (c *RedisCache) Close() error {
	if !c.Available() {
		return nil
	}
	return c.client.Close()
}
