package cache

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"video-fetcher/domain/repository"
	"video-fetcher/infrastructure/logger"
	"video-fetcher/infrastructure/metrics"

	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultTTL         = 5 * time.Minute
	DefaultCheckPeriod = time.Minute
)

// ResultCache is an in-process TTL cache with hit/miss/set counters.
// Values are stored as-is and returned by reference.
type ResultCache struct {
	cache  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// NewResultCache creates a cache whose expired entries are swept every checkPeriod
func NewResultCache(defaultTTL, checkPeriod time.Duration) *ResultCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if checkPeriod <= 0 {
		checkPeriod = DefaultCheckPeriod
	}
	return &ResultCache{cache: gocache.New(defaultTTL, checkPeriod)}
}

func (c *ResultCache) Get(_ context.Context, key string) (any, bool) {
	v, found := c.cache.Get(key)
	if !found {
		c.misses.Add(1)
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheTypeMemory).Inc()
		logger.GetLogger().WithField("key", key).Debug("Cache MISS")
		return nil, false
	}
	c.hits.Add(1)
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit, metrics.CacheTypeMemory).Inc()
	logger.GetLogger().WithField("key", key).Debug("Cache HIT")
	return v, true
}

func (c *ResultCache) Set(_ context.Context, key string, value any, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
	c.sets.Add(1)
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess, metrics.CacheTypeMemory).Inc()
	logger.GetLogger().WithField("key", key).Debug("Cache SET")
	return true
}

func (c *ResultCache) Delete(_ context.Context, key string) int {
	_, found := c.cache.Get(key)
	c.cache.Delete(key)
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusSuccess, metrics.CacheTypeMemory).Inc()
	if found {
		return 1
	}
	return 0
}

// FlushAll drops every entry. Counters are kept.
func (c *ResultCache) FlushAll(_ context.Context) {
	c.cache.Flush()
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpFlush, metrics.CacheStatusSuccess, metrics.CacheTypeMemory).Inc()
}

func (c *ResultCache) Stats(_ context.Context) repository.CacheStats {
	items := c.cache.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return newStats(c.hits.Load(), c.misses.Load(), c.sets.Load(), keys)
}

func newStats(hits, misses, sets int64, keys []string) repository.CacheStats {
	var hitRate float64
	if lookups := hits + misses; lookups > 0 {
		hitRate = float64(hits) / float64(lookups)
	}
	return repository.CacheStats{
		Hits:      hits,
		Misses:    misses,
		Sets:      sets,
		TotalKeys: len(keys),
		HitRate:   hitRate,
		Keys:      keys,
	}
}
