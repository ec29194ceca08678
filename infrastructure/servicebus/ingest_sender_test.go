package servicebus_test

import (
	"context"
	"testing"

	"video-fetcher/domain/model"
	"video-fetcher/infrastructure/servicebus"

	"github.com/stretchr/testify/assert"
)

func TestNewIngestSender(t *testing.T) {
	sender := servicebus.NewIngestSender(nil, "video-ingest")
	assert.NotNil(t, sender)
}

func TestIngestSender_PublishWithoutClient(t *testing.T) {
	sender := servicebus.NewIngestSender(nil, "video-ingest")
	err := sender.Publish(context.Background(), model.IngestEvent{Type: model.IngestEventType})
	assert.Error(t, err)
}

func TestNewServiceBus_RequiresNamespace(t *testing.T) {
	_, err := servicebus.NewServiceBus(context.Background(), "")
	assert.Error(t, err)
}
