package cache

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"video-fetcher/domain/repository"
	"video-fetcher/infrastructure/logger"
	"video-fetcher/infrastructure/metrics"

	"github.com/redis/go-redis/v9"
)

const scanBatchSize = 100

// RedisResultCache shares cached results between instances. Values are stored as JSON
// under prefix and returned as json.RawMessage. Counters are per process.
type RedisResultCache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
	hits       atomic.Int64
	misses     atomic.Int64
	sets       atomic.Int64
}

func NewRedisResultCache(client *redis.Client, prefix string, defaultTTL time.Duration) *RedisResultCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &RedisResultCache{client: client, prefix: prefix, defaultTTL: defaultTTL}
}

// Get treats Redis errors as misses so a cache outage only costs recomputation
func (c *RedisResultCache) Get(ctx context.Context, key string) (any, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		c.misses.Add(1)
		if errors.Is(err, redis.Nil) {
			metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheTypeRedis).Inc()
			return nil, false
		}
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		logger.GetLogger().WithField("key", key).WithField("error", err).Warn("Redis cache get failed")
		return nil, false
	}
	c.hits.Add(1)
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit, metrics.CacheTypeRedis).Inc()
	return json.RawMessage(data), true
}

func (c *RedisResultCache) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		logger.GetLogger().WithField("key", key).WithField("error", err).Error("Failed to encode cache value")
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		return false
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		logger.GetLogger().WithField("key", key).WithField("error", err).Warn("Redis cache set failed")
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		return false
	}
	c.sets.Add(1)
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess, metrics.CacheTypeRedis).Inc()
	return true
}

func (c *RedisResultCache) Delete(ctx context.Context, key string) int {
	n, err := c.client.Del(ctx, c.prefix+key).Result()
	if err != nil {
		logger.GetLogger().WithField("key", key).WithField("error", err).Warn("Redis cache delete failed")
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		return 0
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusSuccess, metrics.CacheTypeRedis).Inc()
	return int(n)
}

// FlushAll deletes only keys under this cache's prefix
func (c *RedisResultCache) FlushAll(ctx context.Context) {
	keys, err := c.scanKeys(ctx)
	if err == nil && len(keys) > 0 {
		for batch := range slices.Chunk(keys, scanBatchSize) {
			if err = c.client.Del(ctx, batch...).Err(); err != nil {
				break
			}
		}
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis cache flush failed")
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpFlush, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		return
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpFlush, metrics.CacheStatusSuccess, metrics.CacheTypeRedis).Inc()
}

func (c *RedisResultCache) Stats(ctx context.Context) repository.CacheStats {
	keys, err := c.scanKeys(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis cache key scan failed")
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, c.prefix))
	}
	slices.Sort(names)
	return newStats(c.hits.Load(), c.misses.Load(), c.sets.Load(), names)
}

func (c *RedisResultCache) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, c.prefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}
