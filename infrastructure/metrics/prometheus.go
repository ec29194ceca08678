// Package metrics provides Prometheus metrics for the ingestion pipeline and read API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "video_fetcher"

var (
	// FetchCyclesTotal tracks ingestion cycles.
	// Labels:
	//   - result: success, empty, error, skipped
	FetchCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_cycles_total",
			Help:      "Total number of ingestion cycles",
		},
		[]string{"result"},
	)

	// FetchCycleDuration observes wall time of non-skipped cycles.
	FetchCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_cycle_duration_seconds",
			Help:      "Duration of ingestion cycles",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// VideosUpsertedTotal counts records written by ingestion.
	// Labels:
	//   - operation: inserted, modified
	VideosUpsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "videos_upserted_total",
			Help:      "Total number of video records written",
		},
		[]string{"operation"},
	)

	// UpstreamRequestsTotal tracks calls to the video source.
	// Labels:
	//   - endpoint: search, videos
	//   - status: success, quota, error
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of video source API requests",
		},
		[]string{"endpoint", "status"},
	)

	// CredentialRotationsTotal counts API key rotations after quota rejections.
	CredentialRotationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_rotations_total",
			Help:      "Total number of API key rotations",
		},
	)

	// CacheOperationsTotal tracks result cache operations.
	// Labels:
	//   - operation: get, set, delete, flush
	//   - status: hit, miss, success, error
	//   - cache_type: memory, redis
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations",
		},
		[]string{"operation", "status", "cache_type"},
	)

	// SingleflightRequestsTotal tracks stats computation coalescing.
	// Labels:
	//   - result: initiated, shared
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)

	// RateLimitedTotal counts requests rejected by the rate limiter.
	// Labels:
	//   - rule: general, videos, search, stats
	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Total number of requests rejected by rate limiting",
		},
		[]string{"rule"},
	)
)

// Fetch cycle results.
const (
	FetchResultSuccess = "success"
	FetchResultEmpty   = "empty"
	FetchResultError   = "error"
	FetchResultSkipped = "skipped"
)

// Upstream endpoints and statuses.
const (
	EndpointSearch = "search"
	EndpointVideos = "videos"

	UpstreamStatusSuccess = "success"
	UpstreamStatusQuota   = "quota"
	UpstreamStatusError   = "error"
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet    = "get"
	CacheOpSet    = "set"
	CacheOpDelete = "delete"
	CacheOpFlush  = "flush"
)

// Cache type constants.
const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)
