package repository

import (
	"context"

	"video-fetcher/domain/model"
)

// UpsertResult counts how a batch upsert was applied
type UpsertResult struct {
	Inserted int64
	Modified int64
}

// IVideo is the record store for ingested videos
type IVideo interface {
	// UpsertMany inserts new ids and replaces mutable fields of existing ones.
	UpsertMany(ctx context.Context, videos []model.Video) (UpsertResult, error)
	Find(ctx context.Context, query model.VideoQuery) ([]model.Video, error)
	Count(ctx context.Context, filter model.VideoFilter) (int64, error)
	// FindByID returns ErrVideoNotFound when no record exists.
	FindByID(ctx context.Context, videoID string) (*model.Video, error)
}
