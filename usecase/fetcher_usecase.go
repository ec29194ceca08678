package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"video-fetcher/domain/model"
	"video-fetcher/domain/repository"
	"video-fetcher/infrastructure/logger"
	"video-fetcher/infrastructure/metrics"
	"video-fetcher/infrastructure/utils"
)

// initialLookback is how far back the first cycle searches.
const initialLookback = 24 * time.Hour

// IFetcherUsecase ingests new videos from the upstream source on a fixed interval
type IFetcherUsecase interface {
	// FetchAndStore runs one cycle. It returns ErrFetchInProgress when a cycle is already running.
	FetchAndStore(ctx context.Context) (FetchResult, error)
	// Start runs a cycle immediately and then on every interval until ctx is done.
	Start(ctx context.Context) error
	Watermark() time.Time
	IsRunning() bool
	SearchQuery() string
}

type FetcherConfig struct {
	SearchQuery        string
	MaxResults         int64
	Interval           time.Duration
	InvalidateOnIngest bool
}

// FetchResult summarizes one ingestion cycle
type FetchResult struct {
	Found     int64     `json:"found"`
	Inserted  int64     `json:"inserted"`
	Modified  int64     `json:"modified"`
	Watermark time.Time `json:"watermark"`
}

type fetcherUsecase struct {
	youtube   repository.IYouTube
	videos    repository.IVideo
	cache     repository.IResultCache
	notifiers []repository.IIngestNotifier
	cfg       FetcherConfig

	running atomic.Bool

	mu        sync.RWMutex
	watermark time.Time
}

// NewFetcherUsecase builds a fetcher whose watermark starts 24 hours in the past.
// cache may be nil; notifiers receive an event after every cycle that wrote records.
func NewFetcherUsecase(
	youtube repository.IYouTube,
	videos repository.IVideo,
	cache repository.IResultCache,
	cfg FetcherConfig,
	notifiers ...repository.IIngestNotifier,
) IFetcherUsecase {
	if cfg.Interval < time.Second {
		cfg.Interval = time.Second
	}
	return &fetcherUsecase{
		youtube:   youtube,
		videos:    videos,
		cache:     cache,
		notifiers: notifiers,
		cfg:       cfg,
		watermark: utils.GetCurrentTime().Add(-initialLookback),
	}
}

func (u *fetcherUsecase) Watermark() time.Time {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.watermark
}

func (u *fetcherUsecase) IsRunning() bool {
	return u.running.Load()
}

func (u *fetcherUsecase) SearchQuery() string {
	return u.cfg.SearchQuery
}

func (u *fetcherUsecase) Start(ctx context.Context) error {
	logger.GetLogger().WithFields(map[string]interface{}{
		"searchQuery": u.cfg.SearchQuery,
		"interval":    u.cfg.Interval.String(),
	}).Info("Video fetcher started")

	u.runCycle(ctx)

	ticker := time.NewTicker(u.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.GetLogger().Info("Video fetcher stopped")
			return nil
		case <-ticker.C:
			u.runCycle(ctx)
		}
	}
}

// runCycle logs cycle errors; they never stop the loop.
func (u *fetcherUsecase) runCycle(ctx context.Context) {
	_, err := u.FetchAndStore(ctx)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrFetchInProgress):
		logger.GetLogger().Info("Video fetch already in progress, skipping")
	case ctx.Err() != nil:
		logger.GetLogger().WithField("error", err).Debug("Video fetch abandoned on shutdown")
	default:
		logger.GetLogger().WithField("error", err).Error("Error in video fetch process")
	}
}

func (u *fetcherUsecase) FetchAndStore(ctx context.Context) (FetchResult, error) {
	if !u.running.CompareAndSwap(false, true) {
		metrics.FetchCyclesTotal.WithLabelValues(metrics.FetchResultSkipped).Inc()
		return FetchResult{Watermark: u.Watermark()}, repository.ErrFetchInProgress
	}
	defer u.running.Store(false)

	start := time.Now()
	res, err := u.fetchAndStore(ctx)
	metrics.FetchCycleDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.FetchCyclesTotal.WithLabelValues(metrics.FetchResultError).Inc()
	case res.Found == 0:
		metrics.FetchCyclesTotal.WithLabelValues(metrics.FetchResultEmpty).Inc()
	default:
		metrics.FetchCyclesTotal.WithLabelValues(metrics.FetchResultSuccess).Inc()
	}
	return res, err
}

func (u *fetcherUsecase) fetchAndStore(ctx context.Context) (FetchResult, error) {
	since := u.Watermark()
	res := FetchResult{Watermark: since}

	logger.GetLogger().WithFields(map[string]interface{}{
		"searchQuery":    u.cfg.SearchQuery,
		"publishedAfter": since,
	}).Debug("Starting video fetch process")

	items, err := u.youtube.SearchByQuery(ctx, u.cfg.SearchQuery, since, u.cfg.MaxResults)
	if err != nil {
		return res, fmt.Errorf("failed to search videos: %w", err)
	}
	if len(items) == 0 {
		logger.GetLogger().Info("No new videos found")
		return res, nil
	}

	items = dedupeSearchItems(items)
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.VideoID)
	}

	details, err := u.youtube.FetchDetails(ctx, ids)
	if err != nil {
		return res, fmt.Errorf("failed to fetch video details: %w", err)
	}
	byID := make(map[string]model.VideoDetail, len(details))
	for _, d := range details {
		byID[d.VideoID] = d
	}

	videos := make([]model.Video, 0, len(items))
	latest := since
	for _, it := range items {
		var detail *model.VideoDetail
		if d, ok := byID[it.VideoID]; ok {
			detail = &d
		}
		v := buildVideo(it, detail)
		if v.PublishedAt.After(latest) {
			latest = v.PublishedAt
		}
		videos = append(videos, v)
	}

	upserted, err := u.videos.UpsertMany(ctx, videos)
	if err != nil {
		return res, fmt.Errorf("failed to store videos: %w", err)
	}

	u.mu.Lock()
	u.watermark = latest
	u.mu.Unlock()

	res.Found = int64(len(videos))
	res.Inserted = upserted.Inserted
	res.Modified = upserted.Modified
	res.Watermark = latest

	metrics.VideosUpsertedTotal.WithLabelValues("inserted").Add(float64(upserted.Inserted))
	metrics.VideosUpsertedTotal.WithLabelValues("modified").Add(float64(upserted.Modified))

	logger.GetLogger().WithFields(map[string]interface{}{
		"found":     res.Found,
		"inserted":  res.Inserted,
		"modified":  res.Modified,
		"watermark": latest,
	}).Info("Video fetch completed")

	if u.cfg.InvalidateOnIngest && u.cache != nil {
		u.cache.FlushAll(ctx)
	}
	u.notify(ctx, model.IngestEvent{
		Type:       model.IngestEventType,
		Query:      u.cfg.SearchQuery,
		Inserted:   res.Inserted,
		Modified:   res.Modified,
		VideoIDs:   ids,
		Watermark:  latest,
		FinishedAt: utils.GetCurrentTime(),
	})
	return res, nil
}

func (u *fetcherUsecase) notify(ctx context.Context, event model.IngestEvent) {
	for _, n := range u.notifiers {
		if n == nil {
			continue
		}
		if err := n.Publish(ctx, event); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to publish ingest event")
		}
	}
}

// dedupeSearchItems keeps one item per id. The last occurrence wins and keeps the first position.
func dedupeSearchItems(items []model.SearchItem) []model.SearchItem {
	pos := make(map[string]int, len(items))
	out := make([]model.SearchItem, 0, len(items))
	for _, it := range items {
		if i, ok := pos[it.VideoID]; ok {
			out[i] = it
			continue
		}
		pos[it.VideoID] = len(out)
		out = append(out, it)
	}
	return out
}

// buildVideo joins a search candidate with its optional detail record.
func buildVideo(item model.SearchItem, detail *model.VideoDetail) model.Video {
	v := model.Video{
		VideoID:      item.VideoID,
		Title:        item.Title,
		Description:  item.Description,
		PublishedAt:  item.PublishedAt.UTC(),
		Thumbnails:   item.Thumbnails,
		ChannelID:    item.ChannelID,
		ChannelTitle: item.ChannelTitle,
		Tags:         []string{},
	}
	if detail == nil {
		return v
	}
	v.Duration = detail.Duration
	v.ViewCount = detail.ViewCount
	v.LikeCount = detail.LikeCount
	v.CategoryID = detail.CategoryID
	if detail.Tags != nil {
		v.Tags = append([]string{}, detail.Tags...)
	}
	return v
}
