package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/application"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/contracts"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/kafka"
)

// BookingCanceler cancels bookings on behalf of other services.
type BookingCanceler interface {
	CancelBooking(ctx context.Context, bookingID int64, reason string) (*application.BookingDTO, error)
}

// CommandConsumer listens to booking commands published by other services.
type CommandConsumer struct {
	consumer *kafka.Consumer
	service  BookingCanceler
	logger   *zap.Logger
}

// NewCommandConsumer creates a new CommandConsumer.
func NewCommandConsumer(
	brokers []string,
	groupID string,
	service BookingCanceler,
	logger *zap.Logger,
) *CommandConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, contracts.TopicBookingCommands, logger)
	return &CommandConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming booking commands. This blocks until the context is cancelled.
func (c *CommandConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CommandConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CommandConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from command topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case contracts.BookingCancelRequested:
		return c.handleCancelRequested(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled booking command type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *CommandConsumer) handleCancelRequested(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var cmd contracts.CancelBookingCommand
	if err := cloudEvent.ParseData(&cmd); err != nil {
		c.logger.Error("failed to parse CancelBookingCommand data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing cancel request",
		zap.Int64("booking_id", cmd.BookingID),
		zap.String("requested_by", cmd.RequestedBy),
		zap.String("source", cloudEvent.Source),
	)

	_, err := c.service.CancelBooking(ctx, cmd.BookingID, cmd.Reason)
	if err != nil {
		if permanent(err) {
			c.logger.Warn("dropping cancel request",
				zap.Int64("booking_id", cmd.BookingID),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to cancel booking",
			zap.Int64("booking_id", cmd.BookingID),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("booking canceled by command", zap.Int64("booking_id", cmd.BookingID))
	return nil
}

// permanent reports whether retrying the command cannot succeed.
func permanent(err error) bool {
	switch domain.KindOf(err) {
	case domain.KindNotFound, domain.KindInvalidState, domain.KindInvalidRequest:
		return true
	}
	return false
}
