// Package id generates the 64-bit order identifiers handed out by one
// engine shard. IDs are strictly increasing per generator instance:
// the high bits carry milliseconds since a fixed epoch, the middle bits
// a worker id unique to the shard, the low bits an intra-millisecond
// sequence. Shards with distinct worker ids never collide, so the
// engine scales horizontally without a central id authority.
package id

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
)

const (
	workerBits   = 10
	sequenceBits = 12

	// MaxWorkerID is the largest worker id that fits the bit layout
	MaxWorkerID = (1 << workerBits) - 1

	maxSequence = (1 << sequenceBits) - 1

	// Epoch is the custom epoch IDs are relative to: 2024-01-01T00:00:00Z
	// in Unix milliseconds. Fixed forever; changing it would reorder ids.
	Epoch int64 = 1704067200000
)

// Errors
var (
	ErrInvalidWorkerID = errors.New("worker id out of range")
	ErrClockRolledBack = errors.New("clock rolled back")
)

// Clock returns the current time in Unix milliseconds
type Clock func() int64

func systemClock() int64 {
	return time.Now().UnixMilli()
}

// Generator issues strictly increasing ids for one shard. Safe for
// concurrent use. After a detected clock rollback the generator is
// permanently failed and refuses further ids, so a shard can never
// issue an id that collides with one already handed out.
type Generator struct {
	mu       sync.Mutex
	workerID uint64
	clock    Clock
	lastTS   int64
	sequence uint64
	failed   bool
}

// NewGenerator creates a generator for the given worker id using the
// system clock.
func NewGenerator(workerID uint64) (*Generator, error) {
	return NewGeneratorWithClock(workerID, systemClock)
}

// NewGeneratorWithClock creates a generator with an injectable clock,
// used by tests to drive time deterministically.
func NewGeneratorWithClock(workerID uint64, clock Clock) (*Generator, error) {
	if workerID > MaxWorkerID {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrInvalidWorkerID, workerID, MaxWorkerID)
	}

	return &Generator{
		workerID: workerID,
		clock:    clock,
		lastTS:   -1,
	}, nil
}

// WorkerID returns the shard's worker id
func (g *Generator) WorkerID() uint64 {
	return g.workerID
}

// NextID returns the next id, strictly greater than every id this
// instance returned before. When the sequence space of the current
// millisecond is exhausted it spins until the clock advances; this is
// the only blocking point and is bounded to sub-millisecond duration.
func (g *Generator) NextID() (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failed {
		return 0, ErrClockRolledBack
	}

	ts := g.clock()
	if ts < g.lastTS {
		g.failed = true
		return 0, fmt.Errorf("%w: last seen %d, now %d", ErrClockRolledBack, g.lastTS, ts)
	}

	if ts == g.lastTS {
		g.sequence++
		if g.sequence > maxSequence {
			for ts <= g.lastTS {
				runtime.Gosched()
				ts = g.clock()
			}
			g.lastTS = ts
			g.sequence = 0
		}
	} else {
		g.lastTS = ts
		g.sequence = 0
	}

	return uint64(ts-Epoch)<<(workerBits+sequenceBits) |
		g.workerID<<sequenceBits |
		g.sequence, nil
}
