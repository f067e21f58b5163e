package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// MetricsCacheTTL keeps dashboard reads hot between ETL runs without serving
// stale batches for long.
const MetricsCacheTTL = 5 * time.Minute

// CacheService is a Redis cache-aside layer for the read API. A nil client
// turns every operation into a no-op, so a missing or unreachable Redis only
// degrades performance, never availability.
type CacheService struct {
	rdb    *redis.Client
	logger *log.Logger
}

func NewCacheService(redisURL string, logger *log.Logger) *CacheService {
	if redisURL == "" {
		logger.Println("Redis: no URL configured, caching disabled")
		return &CacheService{logger: logger}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Printf("Redis: invalid URL %q, caching disabled: %v", redisURL, err)
		return &CacheService{logger: logger}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Printf("Redis: connection failed, caching disabled: %v", err)
		return &CacheService{logger: logger}
	}

	logger.Println("Redis: connected, caching enabled")
	return &CacheService{rdb: rdb, logger: logger}
}

// Get returns the cached payload for key, or nil on a miss or when caching
// is disabled.
func (c *CacheService) Get(ctx context.Context, key string) []byte {
	if c.rdb == nil {
		return nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		c.logger.Printf("Redis: get %s failed: %v", key, err)
		return nil
	}
	return data
}

// Set stores a payload under key with the metrics TTL. Failures are logged
// and swallowed.
func (c *CacheService) Set(ctx context.Context, key string, payload []byte) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, payload, MetricsCacheTTL).Err(); err != nil {
		c.logger.Printf("Redis: set %s failed: %v", key, err)
	}
}

// Close releases the underlying client if one was created.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
