package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

const redisKeyPrefix = "reputation:"

// RedisCache is a Redis implementation of the ReputationCache interface.
// TTL enforcement is delegated to Redis key expiry; the capacity bound is
// enforced by the server's maxmemory eviction policy.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache creates a new Redis reputation cache.
func NewRedisCache(addr, password string, db int, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisCache{client: client, logger: logger}, nil
}

// Get retrieves a live entry for an identifier.
func (c *RedisCache) Get(ctx context.Context, identifier string) (*core.ReputationEntry, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+identifier).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query Redis: %w", err)
	}

	var entry core.ReputationEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode reputation entry: %w", err)
	}

	if time.Now().After(entry.ExpiresAt) {
		return nil, ErrExpired
	}
	return &entry, nil
}

// Set stores a cache entry with its remaining TTL as the key expiry.
func (c *RedisCache) Set(ctx context.Context, entry *core.ReputationEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode reputation entry: %w", err)
	}

	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := c.client.Set(ctx, redisKeyPrefix+entry.Identifier, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store reputation entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry.
func (c *RedisCache) Delete(ctx context.Context, identifier string) error {
	if err := c.client.Del(ctx, redisKeyPrefix+identifier).Err(); err != nil {
		return fmt.Errorf("failed to delete reputation entry: %w", err)
	}
	return nil
}

// Cleanup is a no-op: Redis expires keys on its own.
func (c *RedisCache) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the Redis connection.
func (c *RedisCache) Stop() {
	if err := c.client.Close(); err != nil {
		c.logger.Error("failed to close Redis client", zap.Error(err))
	}
}
