package id

import (
	"errors"
	"sync"
	"testing"
)

func TestNewGeneratorWorkerIDRange(t *testing.T) {
	if _, err := NewGenerator(0); err != nil {
		t.Errorf("NewGenerator(0) error = %v", err)
	}
	if _, err := NewGenerator(MaxWorkerID); err != nil {
		t.Errorf("NewGenerator(MaxWorkerID) error = %v", err)
	}
	if _, err := NewGenerator(MaxWorkerID + 1); !errors.Is(err, ErrInvalidWorkerID) {
		t.Errorf("NewGenerator(MaxWorkerID+1) error = %v, want ErrInvalidWorkerID", err)
	}
}

func TestNextIDStrictlyIncreasing(t *testing.T) {
	gen, err := NewGenerator(1)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	var last uint64
	for i := 0; i < 10000; i++ {
		id, err := gen.NextID()
		if err != nil {
			t.Fatalf("NextID() error = %v", err)
		}
		if id <= last {
			t.Fatalf("id %d not greater than previous %d", id, last)
		}
		last = id
	}
}

func TestNextIDBitLayout(t *testing.T) {
	now := Epoch + 12345
	gen, err := NewGeneratorWithClock(42, func() int64 { return now })
	if err != nil {
		t.Fatalf("NewGeneratorWithClock() error = %v", err)
	}

	id, err := gen.NextID()
	if err != nil {
		t.Fatalf("NextID() error = %v", err)
	}

	if ts := id >> 22; ts != 12345 {
		t.Errorf("timestamp bits = %d, want 12345", ts)
	}
	if worker := (id >> 12) & MaxWorkerID; worker != 42 {
		t.Errorf("worker bits = %d, want 42", worker)
	}
	if seq := id & maxSequence; seq != 0 {
		t.Errorf("sequence bits = %d, want 0", seq)
	}

	// Second id in the same millisecond bumps the sequence
	id2, err := gen.NextID()
	if err != nil {
		t.Fatalf("NextID() error = %v", err)
	}
	if seq := id2 & maxSequence; seq != 1 {
		t.Errorf("sequence bits = %d, want 1", seq)
	}
}

func TestNextIDSequenceOverflowWaitsForClock(t *testing.T) {
	now := Epoch + 1000
	calls := 0
	gen, err := NewGeneratorWithClock(1, func() int64 {
		calls++
		// Advance the clock once the generator starts spinning
		if calls > maxSequence+10 {
			return now + 1
		}
		return now
	})
	if err != nil {
		t.Fatalf("NewGeneratorWithClock() error = %v", err)
	}

	var last uint64
	for i := 0; i <= maxSequence+1; i++ {
		id, err := gen.NextID()
		if err != nil {
			t.Fatalf("NextID() error = %v on iteration %d", err, i)
		}
		if id <= last {
			t.Fatalf("id %d not greater than previous %d after overflow", id, last)
		}
		last = id
	}

	// The final id must come from the next millisecond with sequence 0
	if ts := last >> 22; ts != 1001 {
		t.Errorf("timestamp bits = %d, want 1001", ts)
	}
	if seq := last & maxSequence; seq != 0 {
		t.Errorf("sequence bits = %d, want 0", seq)
	}
}

func TestNextIDClockRollbackLatches(t *testing.T) {
	now := Epoch + 5000
	gen, err := NewGeneratorWithClock(1, func() int64 { return now })
	if err != nil {
		t.Fatalf("NewGeneratorWithClock() error = %v", err)
	}

	if _, err := gen.NextID(); err != nil {
		t.Fatalf("NextID() error = %v", err)
	}

	now = Epoch + 4000
	if _, err := gen.NextID(); !errors.Is(err, ErrClockRolledBack) {
		t.Fatalf("NextID() after rollback error = %v, want ErrClockRolledBack", err)
	}

	// The failure is permanent even after the clock recovers
	now = Epoch + 6000
	if _, err := gen.NextID(); !errors.Is(err, ErrClockRolledBack) {
		t.Errorf("NextID() after recovery error = %v, want ErrClockRolledBack", err)
	}
}

func TestNextIDConcurrentUnique(t *testing.T) {
	gen, err := NewGenerator(3)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	const goroutines = 8
	const perGoroutine = 2000

	var wg sync.WaitGroup
	results := make([][]uint64, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ids := make([]uint64, 0, perGoroutine)
			for j := 0; j < perGoroutine; j++ {
				id, err := gen.NextID()
				if err != nil {
					t.Errorf("NextID() error = %v", err)
					return
				}
				ids = append(ids, id)
			}
			results[n] = ids
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]struct{}, goroutines*perGoroutine)
	for _, ids := range results {
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				t.Fatalf("duplicate id %d", id)
			}
			seen[id] = struct{}{}
		}
	}
}
