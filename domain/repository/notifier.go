package repository

import (
	"context"

	"video-fetcher/domain/model"
)

// IIngestNotifier receives an event after each successful ingestion cycle
type IIngestNotifier interface {
	Publish(ctx context.Context, event model.IngestEvent) error
}
