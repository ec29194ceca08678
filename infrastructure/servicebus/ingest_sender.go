package servicebus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"video-fetcher/domain/model"
	"video-fetcher/domain/repository"
	"video-fetcher/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

var errNoClient = errors.New("service bus client is not configured")

type IngestSender struct {
	AzservicebusClient *azservicebus.Client
	Queue              string
}

func NewIngestSender(azServiceBusClient *azservicebus.Client, queue string) repository.IIngestNotifier {
	return &IngestSender{AzservicebusClient: azServiceBusClient, Queue: queue}
}

func (s *IngestSender) Publish(ctx context.Context, event model.IngestEvent) error {
	if s.AzservicebusClient == nil {
		return errNoClient
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode ingest event: %w", err)
	}

	sender, err := s.AzservicebusClient.NewSender(s.Queue, nil)
	if err != nil {
		return fmt.Errorf("failed to create sender for %s: %w", s.Queue, err)
	}
	defer func(sender *azservicebus.Sender, ctx context.Context) {
		if err := sender.Close(ctx); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}(sender, context.WithoutCancel(ctx))

	contentType := "application/json"
	subject := event.Type
	err = sender.SendMessage(ctx, &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		Subject:     &subject,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to send ingest event: %w", err)
	}
	return nil
}
