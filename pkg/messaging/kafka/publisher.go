package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/erain9/venue/pkg/messaging"
	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

// Publisher implements messaging.EventPublisher on a kafka-go writer.
// Messages are keyed by symbol and hash-balanced, so the per-symbol
// event ordering the engine produces survives topic partitioning.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Kafka publisher for the given broker and topic
func NewPublisher(brokerAddr, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerAddr),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Publisher{writer: writer}
}

// Publish sends a single event
func (p *Publisher) Publish(ctx context.Context, event messaging.Event) error {
	return p.PublishBatch(ctx, []messaging.Event{event})
}

// PublishBatch sends the batch in one write, preserving its order
func (p *Publisher) PublishBatch(ctx context.Context, events []messaging.Event) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		data, err := messaging.Encode(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(event.EventSymbol()),
			Value: data,
			Time:  time.Now(),
		})
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to send %d events to Kafka: %w", len(msgs), err)
	}
	return nil
}

// Close closes the Kafka writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Ensure Publisher implements EventPublisher
var _ messaging.EventPublisher = (*Publisher)(nil)
