// Package snapshot persists periodic depth snapshots to Redis so
// downstream consumers can resynchronize after losing their place on
// the event stream.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/erain9/venue/pkg/core"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a symbol
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is one persisted view of a symbol's book
type Snapshot struct {
	Symbol  string      `json:"symbol"`
	Depth   *core.Depth `json:"depth"`
	TakenAt time.Time   `json:"takenAt"`
}

// Store reads and writes snapshots in Redis, one key per symbol
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore creates a store over the given client. Keys are written as
// "<prefix>:<symbol>".
func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "venue:snapshot"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(symbol string) string {
	return fmt.Sprintf("%s:%s", s.prefix, symbol)
}

// Save overwrites the symbol's snapshot
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key(snap.Symbol), data, 0).Err(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load returns the symbol's latest snapshot
func (s *Store) Load(ctx context.Context, symbol string) (Snapshot, error) {
	data, err := s.client.Get(ctx, s.key(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// DepthSource is the slice of the engine the runner needs
type DepthSource interface {
	Symbols() []string
	AggregatedBook(symbol string) (*core.Depth, error)
}

// Runner snapshots every known symbol on a fixed interval
type Runner struct {
	store    *Store
	source   DepthSource
	interval time.Duration
	logger   zerolog.Logger
}

// NewRunner creates a runner. A zero interval defaults to 30 seconds.
func NewRunner(store *Store, source DepthSource, interval time.Duration, logger zerolog.Logger) *Runner {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Runner{store: store, source: source, interval: interval, logger: logger}
}

// Run snapshots on each tick until ctx is cancelled
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.snapshotAll(ctx)
		}
	}
}

func (r *Runner) snapshotAll(ctx context.Context) {
	for _, symbol := range r.source.Symbols() {
		depth, err := r.source.AggregatedBook(symbol)
		if err != nil {
			continue
		}
		snap := Snapshot{
			Symbol:  symbol,
			Depth:   depth,
			TakenAt: time.Now().UTC(),
		}
		if err := r.store.Save(ctx, snap); err != nil {
			r.logger.Warn().Err(err).Str("symbol", symbol).Msg("Snapshot write failed")
			continue
		}
		r.logger.Debug().Str("symbol", symbol).Msg("Snapshot written")
	}
}
