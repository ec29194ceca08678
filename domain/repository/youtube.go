package repository

import (
	"context"
	"time"

	"video-fetcher/domain/model"
)

// IYouTube defines the upstream video source operations used by ingestion
type IYouTube interface {
	// SearchByQuery returns videos matching query published after the given time, newest first.
	SearchByQuery(ctx context.Context, query string, publishedAfter time.Time, maxResults int64) ([]model.SearchItem, error)
	// FetchDetails returns detail records for the given ids. Ids without a detail are omitted.
	FetchDetails(ctx context.Context, ids []string) ([]model.VideoDetail, error)
}
