package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler processes one message. Returning nil commits the offset.
type Handler func(ctx context.Context, m kafka.Message) error

// Consumer reads a single topic as part of a consumer group.
type Consumer struct {
	r       *kafka.Reader
	logger  *zap.Logger
	backoff time.Duration
}

// NewConsumer creates a group reader with manual offset commits.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			GroupID:        groupID,
			Topic:          topic,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: 0,
			StartOffset:    kafka.FirstOffset,
		}),
		logger:  logger,
		backoff: 500 * time.Millisecond,
	}
}

// Consume blocks until ctx is canceled. A failed handler leaves the offset
// uncommitted and the message is retried after a short backoff.
func (c *Consumer) Consume(ctx context.Context, h Handler) error {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, kafka.ErrGroupClosed) {
				return nil
			}
			return err
		}

		for {
			if err := h(ctx, m); err == nil {
				break
			} else {
				c.logger.Warn("handler failed, retrying",
					zap.String("topic", m.Topic),
					zap.Int64("offset", m.Offset),
					zap.Error(err),
				)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
		}

		if err := c.r.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("failed to commit offset", zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.r.Close()
}
