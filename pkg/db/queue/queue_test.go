package queue

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erain9/venue/pkg/messaging"
)

func TestPublishBatchKeysAndOrder(t *testing.T) {
	mock := &mockProducer{}
	publisher := &Publisher{producer: mock, topic: "venue-events"}

	events := []messaging.Event{
		messaging.OrderCreated{Sequence: 1, Symbol: "BTCUSD", OrderID: 10, Side: "BUY", Quantity: "1.000", Price: "100.000"},
		messaging.TradeExecuted{Sequence: 2, Symbol: "BTCUSD", BuyOrderID: 10, SellOrderID: 9, Price: "100.000", Quantity: "1.000", MakerSide: "SELL"},
		messaging.OrderCancelled{Sequence: 3, Symbol: "BTCUSD", OrderID: 10},
	}

	require.NoError(t, publisher.PublishBatch(context.Background(), events))
	require.Len(t, mock.sentMessages, 3)

	for i, msg := range mock.sentMessages {
		assert.Equal(t, "venue-events", msg.Topic)

		// All events of one symbol share a key, so they land on one
		// partition in order
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "BTCUSD", string(key))

		data, err := msg.Value.Encode()
		require.NoError(t, err)
		decoded, err := messaging.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, events[i].EventKind(), decoded.EventKind())
		assert.Equal(t, events[i].EventSequence(), decoded.EventSequence())
	}
}

func TestPublishBatchEmpty(t *testing.T) {
	mock := &mockProducer{}
	publisher := &Publisher{producer: mock, topic: "venue-events"}

	require.NoError(t, publisher.PublishBatch(context.Background(), nil))
	assert.Empty(t, mock.sentMessages)
}

func TestPublishBatchProducerError(t *testing.T) {
	mock := &mockProducer{err: sarama.ErrOutOfBrokers}
	publisher := &Publisher{producer: mock, topic: "venue-events"}

	err := publisher.Publish(context.Background(), messaging.OrderCreated{Sequence: 1, Symbol: "BTCUSD", OrderID: 1})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.Empty(t, mock.sentMessages)
}
