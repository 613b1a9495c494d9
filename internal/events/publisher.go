package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// TopicPrefix is prepended to the event type to form the topic name
const TopicPrefix = "consultancy."

// Topic returns the topic an event type is published on
func Topic(eventType string) string {
	return TopicPrefix + eventType
}

// WatermillEventPublisher publishes events through any watermill publisher
type WatermillEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewWatermillEventPublisher wraps an existing watermill publisher
func NewWatermillEventPublisher(publisher message.Publisher, logger *slog.Logger) *WatermillEventPublisher {
	return &WatermillEventPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

// NewKafkaEventPublisher connects to the given brokers
func NewKafkaEventPublisher(brokers []string, logger *slog.Logger) (*WatermillEventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return NewWatermillEventPublisher(publisher, logger), nil
}

// NewChannelEventPublisher keeps events in process. Used when no broker is configured.
func NewChannelEventPublisher(logger *slog.Logger) (*WatermillEventPublisher, *gochannel.GoChannel) {
	ch := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))
	return NewWatermillEventPublisher(ch, logger), ch
}

// NewEventPublisher picks Kafka when brokers are configured, otherwise the in-process channel
func NewEventPublisher(brokers string, logger *slog.Logger) (EventPublisher, error) {
	var list []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			list = append(list, b)
		}
	}

	if len(list) == 0 {
		logger.Info("No Kafka brokers configured, publishing events in process")
		p, _ := NewChannelEventPublisher(logger)
		return p, nil
	}

	return NewKafkaEventPublisher(list, logger)
}

func (p *WatermillEventPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(Topic(event.Type), msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.DebugContext(ctx, "Event published",
		"event_id", event.ID,
		"event_type", event.Type)

	return nil
}

func (p *WatermillEventPublisher) Close() error {
	return p.publisher.Close()
}

// PublishSafe publishes and logs a failure instead of returning it
func PublishSafe(ctx context.Context, publisher EventPublisher, logger *slog.Logger, eventType string, data interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, NewEvent(eventType, data)); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", eventType,
			"error", err)
	}
}
