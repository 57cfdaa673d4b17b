package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/kafka"
)

const eventSource = "service-hotel-booking"

// EventPublisher delivers CloudEvents to a topic.
type EventPublisher interface {
	PublishEventWithKey(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

// PublishEventWithKey does nothing.
func (NopPublisher) PublishEventWithKey(context.Context, string, string, kafka.CloudEvent) error {
	return nil
}

// publishEvent logs and swallows publish failures; the booking is already committed.
func publishEvent(ctx context.Context, p EventPublisher, logger *zap.Logger, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := p.PublishEventWithKey(ctx, topic, key, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
