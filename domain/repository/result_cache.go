package repository

import (
	"context"
	"time"
)

// CacheStats is a snapshot of result cache counters
type CacheStats struct {
	Hits      int64    `json:"hits"`
	Misses    int64    `json:"misses"`
	Sets      int64    `json:"sets"`
	TotalKeys int      `json:"totalKeys"`
	HitRate   float64  `json:"hitRate"`
	Keys      []string `json:"keys"`
}

// IResultCache is a TTL cache for computed query results
type IResultCache interface {
	// Get returns the value and true when the key is present and unexpired.
	Get(ctx context.Context, key string) (any, bool)
	// Set stores value under key. A ttl <= 0 uses the cache default.
	Set(ctx context.Context, key string, value any, ttl time.Duration) bool
	Delete(ctx context.Context, key string) int
	FlushAll(ctx context.Context)
	Stats(ctx context.Context) CacheStats
}
