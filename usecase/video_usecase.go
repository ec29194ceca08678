package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"video-fetcher/domain/dto"
	"video-fetcher/domain/model"
	"video-fetcher/domain/repository"
	"video-fetcher/infrastructure/cache"
	"video-fetcher/infrastructure/logger"
	"video-fetcher/infrastructure/metrics"
	"video-fetcher/infrastructure/utils"

	"golang.org/x/sync/singleflight"
)

// Cache key prefixes
const (
	CachePrefixVideos = "videos"
	CachePrefixSearch = "search"
	CacheKeyStats     = "video_stats"
)

const (
	defaultStatsBatchSize = 500
	statsComputeTimeout   = 30 * time.Second
)

// IVideoUsecase serves the read API over stored videos
type IVideoUsecase interface {
	ListVideos(ctx context.Context, req *dto.VideoListRequest) (*dto.VideoListData, error)
	SearchVideos(ctx context.Context, req *dto.VideoSearchRequest) (*dto.VideoSearchData, error)
	// GetVideo returns repository.ErrVideoNotFound for unknown ids.
	GetVideo(ctx context.Context, videoID string) (*model.Video, error)
	GetStats(ctx context.Context) (*dto.VideoStats, error)
}

type VideoUsecaseConfig struct {
	SearchQuery string
	ListTTL     time.Duration
	SearchTTL   time.Duration
	StatsTTL    time.Duration
	// StatsBatchSize bounds how many videos are loaded per read while computing stats.
	StatsBatchSize int64
}

type videoUsecase struct {
	videos    repository.IVideo
	cache     repository.IResultCache
	analytics *VideoAnalytics
	cfg       VideoUsecaseConfig
	group     singleflight.Group
}

// NewVideoUsecase wires the read path. cache may be nil to disable result caching.
func NewVideoUsecase(videos repository.IVideo, resultCache repository.IResultCache, analytics *VideoAnalytics, cfg VideoUsecaseConfig) IVideoUsecase {
	if cfg.StatsBatchSize <= 0 {
		cfg.StatsBatchSize = defaultStatsBatchSize
	}
	return &videoUsecase{
		videos:    videos,
		cache:     resultCache,
		analytics: analytics,
		cfg:       cfg,
	}
}

func (u *videoUsecase) ListVideos(ctx context.Context, req *dto.VideoListRequest) (*dto.VideoListData, error) {
	q := *req
	defaultPage(&q.Page, &q.Limit)
	query := model.VideoQuery{
		Filter:    model.VideoFilter{Channel: q.Channel},
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Skip:      dto.Skip(q.Page, q.Limit),
		Limit:     q.Limit,
	}.Normalize()
	q.SortBy, q.SortOrder = query.SortBy, query.SortOrder

	var err error
	if query.Filter.DateFrom, err = parseDateParam("dateFrom", q.DateFrom); err != nil {
		return nil, err
	}
	if query.Filter.DateTo, err = parseDateParam("dateTo", q.DateTo); err != nil {
		return nil, err
	}

	key, err := cacheKey(CachePrefixVideos, q)
	if err != nil {
		return nil, err
	}
	out, err := cached(ctx, u.cache, key, u.cfg.ListTTL, func(ctx context.Context) (dto.VideoListData, error) {
		videos, total, err := u.page(ctx, query)
		if err != nil {
			return dto.VideoListData{}, err
		}
		return dto.VideoListData{
			Videos: videos,
			Filters: dto.AppliedFilters{
				Channel:   optional(q.Channel),
				DateFrom:  optional(q.DateFrom),
				DateTo:    optional(q.DateTo),
				SortBy:    q.SortBy,
				SortOrder: q.SortOrder,
			},
			Pagination: dto.NewPagination(q.Page, q.Limit, total),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *videoUsecase) SearchVideos(ctx context.Context, req *dto.VideoSearchRequest) (*dto.VideoSearchData, error) {
	q := *req
	defaultPage(&q.Page, &q.Limit)
	terms := utils.SearchTerms(q.Q)
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: search query is required", repository.ErrInvalidQuery)
	}
	query := model.VideoQuery{
		Filter: model.VideoFilter{SearchTerms: terms},
		Skip:   dto.Skip(q.Page, q.Limit),
		Limit:  q.Limit,
	}.Normalize()

	key, err := cacheKey(CachePrefixSearch, q)
	if err != nil {
		return nil, err
	}
	out, err := cached(ctx, u.cache, key, u.cfg.SearchTTL, func(ctx context.Context) (dto.VideoSearchData, error) {
		videos, total, err := u.page(ctx, query)
		if err != nil {
			return dto.VideoSearchData{}, err
		}
		return dto.VideoSearchData{
			Videos:      videos,
			SearchQuery: q.Q,
			Pagination:  dto.NewPagination(q.Page, q.Limit, total),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *videoUsecase) GetVideo(ctx context.Context, videoID string) (*model.Video, error) {
	return u.videos.FindByID(ctx, videoID)
}

// GetStats serves cached statistics. Concurrent misses share one computation,
// which runs detached from any single caller so one disconnect cannot fail the rest.
// Each caller still stops waiting when its own ctx is done.
// Cache counters are read fresh on every call.
func (u *videoUsecase) GetStats(ctx context.Context) (*dto.VideoStats, error) {
	ch := u.group.DoChan(CacheKeyStats, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statsComputeTimeout)
		defer cancel()
		return cached(flightCtx, u.cache, CacheKeyStats, u.cfg.StatsTTL, u.computeStats)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Shared {
		metrics.SingleflightRequestsTotal.WithLabelValues("shared").Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues("initiated").Inc()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	stats := res.Val.(dto.VideoStats)
	if u.cache != nil {
		stats.CacheStats = u.cache.Stats(ctx)
	}
	return &stats, nil
}

// computeStats reads the store in publish order, one batch at a time, so memory
// stays bounded by the aggregates rather than the collection size.
func (u *videoUsecase) computeStats(ctx context.Context) (dto.VideoStats, error) {
	acc := u.analytics.NewAccumulator()
	for skip := int64(0); ; skip += u.cfg.StatsBatchSize {
		batch, err := u.videos.Find(ctx, model.VideoQuery{
			SortBy:    model.SortByPublishedAt,
			SortOrder: model.SortAsc,
			Skip:      skip,
			Limit:     u.cfg.StatsBatchSize,
		})
		if err != nil {
			return dto.VideoStats{}, fmt.Errorf("failed to load videos for stats: %w", err)
		}
		acc.Add(batch...)
		if int64(len(batch)) < u.cfg.StatsBatchSize {
			break
		}
	}
	return dto.VideoStats{
		OverviewStats:    acc.Overview(),
		SearchQuery:      u.cfg.SearchQuery,
		TopChannels:      acc.TopChannels(),
		DailyTrends:      acc.DailyUploadTrends(),
		TrendingKeywords: acc.TrendingKeywords(),
	}, nil
}

func (u *videoUsecase) page(ctx context.Context, query model.VideoQuery) ([]model.Video, int64, error) {
	videos, err := u.videos.Find(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	total, err := u.videos.Count(ctx, query.Filter)
	if err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

// cached returns the value under key or computes and stores it. Values from a
// shared backend come back as json.RawMessage and are decoded into T.
func cached[T any](ctx context.Context, c repository.IResultCache, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	if c != nil {
		if v, ok := c.Get(ctx, key); ok {
			if out, ok := decodeCached[T](v); ok {
				return out, nil
			}
			logger.GetLogger().WithField("key", key).Warn("Discarding undecodable cache entry")
		}
	}
	out, err := compute(ctx)
	if err != nil {
		return out, err
	}
	if c != nil {
		c.Set(ctx, key, out, ttl)
	}
	return out, nil
}

func decodeCached[T any](v any) (T, bool) {
	switch x := v.(type) {
	case T:
		return x, true
	case json.RawMessage:
		var out T
		if err := json.Unmarshal(x, &out); err != nil {
			return out, false
		}
		return out, true
	}
	var zero T
	return zero, false
}

func cacheKey(prefix string, req any) (string, error) {
	params, err := cache.ParamsFromStruct(req)
	if err != nil {
		return "", err
	}
	return cache.GenerateKey(prefix, params), nil
}

func defaultPage(page, limit *int64) {
	if *page < 1 {
		*page = 1
	}
	if *limit < 1 {
		*limit = 10
	}
}

func parseDateParam(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a valid date", repository.ErrInvalidQuery, name)
	}
	t = t.UTC()
	return &t, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
