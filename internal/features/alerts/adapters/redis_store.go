package adapters

import (
	"context"
	"fmt"
	"time"

	"shipment-sentinel/internal/core/cache"
)

const suppressKeyPrefix = "sentinel:suppress:"

// RedisStore implements ports.SuppressionStore over the core cache, sharing
// the suppression window across replicas. Expiry is delegated to Redis TTLs
// instead of a lazy sweep.
type RedisStore struct {
	cache cache.Cache
}

// NewRedisStore creates a Redis-backed suppression store.
func NewRedisStore(c cache.Cache) *RedisStore {
	return &RedisStore{cache: c}
}

// Seen records the key with the window as TTL unless it already exists.
func (r *RedisStore) Seen(ctx context.Context, key string, window time.Duration) (bool, error) {
	stored, err := r.cache.SetNX(ctx, suppressKeyPrefix+key, []byte("1"), window)
	if err != nil {
		return false, fmt.Errorf("suppression store: %w", err)
	}
	return !stored, nil
}
