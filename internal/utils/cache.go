package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding for cached values
	"time"          // Cache TTL

	"github.com/redis/go-redis/v9" // Redis client
)

// CacheTTL bounds staleness for read-through cached lists; writes invalidate
// eagerly so the TTL is only a backstop
const CacheTTL = 5 * time.Minute

// Per-user cache keys for the read-heavy list endpoints
func AccountsCacheKey(username string) string  { return "accounts:user:" + username }
func TagsCacheKey(username string) string      { return "txtags:user:" + username }
func LocationsCacheKey(username string) string { return "txlocations:user:" + username }

// GetCache retrieves a cached value and unmarshals it into dest; the first
// return reports whether the key existed
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil // Cache miss
	} else if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(val), dest)
}

// SetCache stores a value under key for CacheTTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, CacheTTL).Err()
}

// DeleteCache drops the given keys, invalidating their cached lists
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	return rdb.Del(ctx, keys...).Err()
}
