package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"video-fetcher/domain/model"
	"video-fetcher/domain/repository"
	"video-fetcher/infrastructure/logger"
	"video-fetcher/infrastructure/metrics"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	defaultRequestTimeout = 15 * time.Second
	// videos.list accepts at most 50 ids per request
	detailsBatchSize = 50
)

// Client is a read-only YouTube Data API client that rotates API keys on quota errors
type Client struct {
	pool     *CredentialPool
	services []*youtube.Service
	timeout  time.Duration
}

// Config represents YouTube API configuration
type Config struct {
	APIKeys        []string
	Endpoint       string
	RequestTimeout time.Duration
}

// NewYouTubeClient builds one API service per key. At least one key is required.
func NewYouTubeClient(ctx context.Context, config *Config) (repository.IYouTube, error) {
	pool, err := NewCredentialPool(config.APIKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}

	services := make([]*youtube.Service, 0, pool.Len())
	for _, key := range pool.keys {
		opts := []option.ClientOption{option.WithAPIKey(key)}
		if config.Endpoint != "" {
			opts = append(opts, option.WithEndpoint(config.Endpoint))
		}
		service, err := youtube.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube service with API key: %w", err)
		}
		services = append(services, service)
	}

	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Client{
		pool:     pool,
		services: services,
		timeout:  timeout,
	}, nil
}

// SearchByQuery lists the newest videos matching query published after publishedAfter
func (c *Client) SearchByQuery(ctx context.Context, query string, publishedAfter time.Time, maxResults int64) ([]model.SearchItem, error) {
	res, err := withRotation(ctx, c, metrics.EndpointSearch, func(ctx context.Context, service *youtube.Service) (*youtube.SearchListResponse, error) {
		return service.Search.List([]string{"snippet"}).
			Q(query).
			Type("video").
			Order("date").
			PublishedAfter(publishedAfter.UTC().Format(time.RFC3339)).
			MaxResults(maxResults).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, err
	}

	items := make([]model.SearchItem, 0, len(res.Items))
	for _, item := range res.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		if err != nil {
			logger.GetLogger().WithField("videoId", item.Id.VideoId).WithField("error", err).Warn("Skipping search result with invalid publishedAt")
			continue
		}
		items = append(items, model.SearchItem{
			VideoID:      item.Id.VideoId,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			PublishedAt:  publishedAt.UTC(),
			ChannelID:    item.Snippet.ChannelId,
			ChannelTitle: item.Snippet.ChannelTitle,
			Thumbnails:   convertThumbnails(item.Snippet.Thumbnails),
		})
	}
	return items, nil
}

// FetchDetails looks up duration, statistics, tags and category for ids
func (c *Client) FetchDetails(ctx context.Context, ids []string) ([]model.VideoDetail, error) {
	details := make([]model.VideoDetail, 0, len(ids))
	for start := 0; start < len(ids); start += detailsBatchSize {
		end := min(start+detailsBatchSize, len(ids))
		batch := ids[start:end]

		res, err := withRotation(ctx, c, metrics.EndpointVideos, func(ctx context.Context, service *youtube.Service) (*youtube.VideoListResponse, error) {
			return service.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
				Id(batch...).
				Context(ctx).
				Do()
		})
		if err != nil {
			return nil, err
		}
		for _, video := range res.Items {
			if video == nil || video.Id == "" {
				continue
			}
			details = append(details, convertToVideoDetail(video))
		}
	}
	return details, nil
}

// withRotation runs call with the current key, rotating to the next key on each quota
// rejection. After every key has been rejected once it fails with ErrCredentialsExhausted.
func withRotation[T any](ctx context.Context, c *Client, endpoint string, call func(ctx context.Context, service *youtube.Service) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt < c.pool.Len(); attempt++ {
		idx, _ := c.pool.Current()

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		res, err := call(callCtx, c.services[idx])
		cancel()

		if err == nil {
			metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, metrics.UpstreamStatusSuccess).Inc()
			return res, nil
		}
		if !isQuotaError(err) {
			metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, metrics.UpstreamStatusError).Inc()
			return zero, fmt.Errorf("%w: %s: %w", repository.ErrUpstream, endpoint, err)
		}

		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, metrics.UpstreamStatusQuota).Inc()
		metrics.CredentialRotationsTotal.Inc()
		lastErr = err
		next := c.pool.Rotate(idx)
		logger.GetLogger().WithFields(map[string]interface{}{
			"endpoint": endpoint,
			"from":     idx,
			"to":       next,
			"attempt":  attempt + 1,
		}).Warn("API quota exceeded, rotating API key")
	}
	return zero, fmt.Errorf("%w: %w", repository.ErrCredentialsExhausted, lastErr)
}

func isQuotaError(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusForbidden
}

func convertToVideoDetail(video *youtube.Video) model.VideoDetail {
	detail := model.VideoDetail{
		VideoID: video.Id,
		Tags:    []string{},
	}
	if video.ContentDetails != nil && video.ContentDetails.Duration != "" {
		duration := video.ContentDetails.Duration
		detail.Duration = &duration
	}
	// The typed client decodes counts as uint64 with omitempty, so a hidden count and a
	// true zero both read as "0". Only a missing statistics block leaves the counts unset.
	if video.Statistics != nil {
		viewCount := strconv.FormatUint(video.Statistics.ViewCount, 10)
		likeCount := strconv.FormatUint(video.Statistics.LikeCount, 10)
		detail.ViewCount = &viewCount
		detail.LikeCount = &likeCount
	}
	if video.Snippet != nil {
		detail.Tags = append(detail.Tags, video.Snippet.Tags...)
		if video.Snippet.CategoryId != "" {
			categoryID := video.Snippet.CategoryId
			detail.CategoryID = &categoryID
		}
	}
	return detail
}

func convertThumbnails(t *youtube.ThumbnailDetails) model.Thumbnails {
	if t == nil {
		return model.Thumbnails{}
	}
	return model.Thumbnails{
		Default: convertThumbnail(t.Default),
		Medium:  convertThumbnail(t.Medium),
		High:    convertThumbnail(t.High),
	}
}

func convertThumbnail(t *youtube.Thumbnail) *model.Thumbnail {
	if t == nil || t.Url == "" {
		return nil
	}
	return &model.Thumbnail{URL: t.Url, Width: t.Width, Height: t.Height}
}
