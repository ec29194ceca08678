package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"video-fetcher/domain/model"
	"video-fetcher/domain/repository"
	"video-fetcher/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

var errNoClient = errors.New("pubsub client is not configured")

type IngestPublisher struct {
	PubSubClient *pubsub.Client
	TopicName    string

	mu    sync.Mutex
	topic *pubsub.Topic
}

func NewIngestPublisher(pubSubClient *pubsub.Client, topicName string) repository.IIngestNotifier {
	return &IngestPublisher{
		PubSubClient: pubSubClient,
		TopicName:    topicName,
	}
}

// Publish sends the event as JSON and waits for the server id.
func (p *IngestPublisher) Publish(ctx context.Context, event model.IngestEvent) error {
	if p.PubSubClient == nil {
		return errNoClient
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode ingest event: %w", err)
	}

	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return err
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"type": event.Type, "query": event.Query},
	}).Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to publish ingest event: %w", err)
	}

	logger.GetLogger().WithField("server ID", serverID).Debug("Ingest event published")
	return nil
}

// ensureTopic resolves the topic, creating it if it doesn't exist. Only a
// resolved topic is kept; a failed lookup is retried on the next call.
func (p *IngestPublisher) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		return p.topic, nil
	}

	topic := p.PubSubClient.Topic(p.TopicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check topic %s: %w", p.TopicName, err)
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.TopicName).Info("Topic doesn't exist - creating it")
		topic, err = p.PubSubClient.CreateTopic(ctx, p.TopicName)
		if err != nil {
			return nil, fmt.Errorf("failed to create topic %s: %w", p.TopicName, err)
		}
	}
	p.topic = topic
	return topic, nil
}
