package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/parkdiscovery/internal/domain/providers"
	redisclient "github.com/zatekoja/parkdiscovery/internal/infrastructure/clients/redis"
)

// KeyPrefix namespaces every key written by this service
const KeyPrefix = "parkdiscovery:"

// RedisAdapter implements the CacheProvider interface using Redis
type RedisAdapter struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisAdapter creates a Redis cache whose keys live under KeyPrefix
func NewRedisAdapter(client *redisclient.Client) providers.CacheProvider {
	return &RedisAdapter{rdb: client.Client(), prefix: KeyPrefix}
}

// Get returns the cached bytes, or providers.ErrCacheMiss
func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := a.rdb.Get(ctx, a.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, providers.ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value; a zero ttl keeps it until evicted
func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := a.rdb.Set(ctx, a.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete evicts the keys in one round trip
func (a *RedisAdapter) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = a.prefix + key
	}
	if err := a.rdb.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("cache delete %v: %w", keys, err)
	}
	return nil
}
