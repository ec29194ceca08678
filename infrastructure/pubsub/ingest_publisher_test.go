package pubsub_test

import (
	"context"
	"encoding/json"
	"testing"

	"video-fetcher/domain/model"
	"video-fetcher/infrastructure/pubsub"

	gpubsub "cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func newTestClient(t *testing.T) (*pstest.Server, *gpubsub.Client) {
	t.Helper()

	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	client, err := gpubsub.NewClient(context.Background(), "video-fetcher-test", option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestNewIngestPublisher(t *testing.T) {
	publisher := pubsub.NewIngestPublisher(nil, "video-ingest")
	assert.NotNil(t, publisher)
}

func TestIngestPublisher_PublishWithoutClient(t *testing.T) {
	publisher := pubsub.NewIngestPublisher(nil, "video-ingest")
	err := publisher.Publish(context.Background(), model.IngestEvent{Type: model.IngestEventType})
	assert.Error(t, err)
}

func TestIngestPublisher_CreatesTopicAndPublishes(t *testing.T) {
	srv, client := newTestClient(t)
	publisher := pubsub.NewIngestPublisher(client, "video-ingest")

	event := model.IngestEvent{Type: model.IngestEventType, Query: "cricket", Inserted: 2}
	require.NoError(t, publisher.Publish(context.Background(), event))

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.IngestEventType, msgs[0].Attributes["type"])
	assert.Equal(t, "cricket", msgs[0].Attributes["query"])

	var got model.IngestEvent
	require.NoError(t, json.Unmarshal(msgs[0].Data, &got))
	assert.EqualValues(t, 2, got.Inserted)
}

func TestIngestPublisher_RetriesTopicLookupAfterFailure(t *testing.T) {
	srv, client := newTestClient(t)
	publisher := pubsub.NewIngestPublisher(client, "video-ingest")
	event := model.IngestEvent{Type: model.IngestEventType, Query: "cricket"}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, publisher.Publish(cancelled, event))

	require.NoError(t, publisher.Publish(context.Background(), event))
	assert.Len(t, srv.Messages(), 1)
}

func TestNewPubSub_RequiresProject(t *testing.T) {
	_, err := pubsub.NewPubSub(context.Background(), "")
	assert.Error(t, err)
}
