package messaging

import "context"

// EventPublisher hands the engine's event stream to downstream
// transport. PublishBatch must preserve the input ordering. The book is
// authoritative: a publish failure is reported to the caller but never
// rolls back the already-applied book mutation; downstream consumers
// detect the gap via sequence numbers and resync from snapshots.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	PublishBatch(ctx context.Context, events []Event) error
	Close() error
}
