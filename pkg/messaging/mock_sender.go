package messaging

import (
	"context"
	"sync"
)

// MockPublisher records published events for tests. An optional error
// can be armed to simulate transport failure.
type MockPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// NewMockPublisher creates a new MockPublisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Fail makes every subsequent publish return err (nil clears it)
func (m *MockPublisher) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Publish implements EventPublisher
func (m *MockPublisher) Publish(_ context.Context, event Event) error {
	return m.PublishBatch(context.Background(), []Event{event})
}

// PublishBatch implements EventPublisher
func (m *MockPublisher) PublishBatch(_ context.Context, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, events...)
	return nil
}

// Events returns everything published so far, in order
func (m *MockPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Close does nothing
func (m *MockPublisher) Close() error {
	return nil
}

// NopPublisher discards everything. Used by the load tester and as the
// fallback when no broker is configured.
type NopPublisher struct{}

// Publish implements EventPublisher
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// PublishBatch implements EventPublisher
func (NopPublisher) PublishBatch(context.Context, []Event) error { return nil }

// Close implements EventPublisher
func (NopPublisher) Close() error { return nil }

// Ensure both implement EventPublisher
var (
	_ EventPublisher = (*MockPublisher)(nil)
	_ EventPublisher = NopPublisher{}
)
