package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// List cache keys
const (
	StockListKeyPrefix   = "stok:list:"
	AccountListKeyPrefix = "cari:list:"

	ListTTL = 60 * time.Second
)

var client *redis.Client

// Init connects to Redis. An empty url leaves caching disabled; every
// function in this package is a no-op while the client is nil.
func Init(url string) error {
	if url == "" {
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return err
	}
	c := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		// Graceful degradation: run without cache
		c.Close()
		return err
	}
	client = c
	return nil
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

// Close releases the connection
func Close() {
	if client != nil {
		client.Close()
		client = nil
	}
}

// Enabled reports whether a Redis connection is active
func Enabled() bool {
	return client != nil
}

// ============================================
// Generic Cache Functions
// ============================================

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// ============================================
// Cache Invalidation Functions
// ============================================

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if iter.Err() == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// ============================================
// Entity-Based Cache Invalidators
// ============================================

// InvalidateStockCaches clears stock list caches
// Called when: stock create/update/delete, decrements, spreadsheet import
func InvalidateStockCaches(ctx context.Context) {
	InvalidatePattern(ctx, StockListKeyPrefix+"*")
}

// InvalidateAccountCaches clears account list caches
// Called when: account create/update/delete, dedup insert
func InvalidateAccountCaches(ctx context.Context) {
	InvalidatePattern(ctx, AccountListKeyPrefix+"*")
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
