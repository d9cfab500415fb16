// Package queue is the sarama-based event publisher. It exists next to
// the kafka-go publisher for deployments standardized on the IBM client;
// both satisfy messaging.EventPublisher and the engine does not care
// which one it is handed.
package queue

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/erain9/venue/pkg/messaging"
)

const maxRetry = 5

// Publisher implements messaging.EventPublisher on a sarama sync
// producer. Hash partitioning by symbol plus a single in-flight request
// keep per-symbol ordering intact even across retries.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher connects a sync producer to the given brokers
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = maxRetry
	cfg.Producer.Return.Successes = true
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &Publisher{producer: producer, topic: topic}, nil
}

// Publish sends a single event
func (p *Publisher) Publish(ctx context.Context, event messaging.Event) error {
	return p.PublishBatch(ctx, []messaging.Event{event})
}

// PublishBatch sends the batch in order as one producer call
func (p *Publisher) PublishBatch(_ context.Context, events []messaging.Event) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(events))
	for _, event := range events {
		data, err := messaging.Encode(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(event.EventSymbol()),
			Value: sarama.ByteEncoder(data),
		})
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		return fmt.Errorf("failed to send %d events to Kafka: %w", len(msgs), err)
	}
	return nil
}

// Close closes the underlying producer
func (p *Publisher) Close() error {
	return p.producer.Close()
}

// Ensure Publisher implements EventPublisher
var _ messaging.EventPublisher = (*Publisher)(nil)
