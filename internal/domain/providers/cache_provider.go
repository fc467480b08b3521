package providers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned by CacheProvider.Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache, or ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache; a zero ttl keeps it until evicted
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes values from cache
	Delete(ctx context.Context, keys ...string) error
}

// ParkCacheKey is the cache key of a single park
func ParkCacheKey(id string) string {
	return fmt.Sprintf("park:%s", id)
}
