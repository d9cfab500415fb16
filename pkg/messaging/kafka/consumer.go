package kafka

import (
	"context"
	"errors"

	"github.com/erain9/venue/pkg/messaging"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Consumer tails the order event topic and feeds decoded events to a
// handler. Undecodable messages are logged and skipped rather than
// stalling the stream.
type Consumer struct {
	reader *kafka.Reader
	logger zerolog.Logger
}

// NewConsumer creates a consumer joining the given group
func NewConsumer(brokerAddr, topic, groupID string, logger zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return &Consumer{reader: reader, logger: logger}
}

// Run reads events until the context is cancelled or the handler
// returns an error.
func (c *Consumer) Run(ctx context.Context, handler func(messaging.Event) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		event, err := messaging.Decode(msg.Value)
		if err != nil {
			c.logger.Warn().Err(err).
				Str("key", string(msg.Key)).
				Int64("offset", msg.Offset).
				Msg("Skipping undecodable event")
			continue
		}

		if err := handler(event); err != nil {
			return err
		}
	}
}

// Close closes the underlying reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
