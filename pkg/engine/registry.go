package engine

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/erain9/venue/pkg/core"
)

var (
	// ErrBookExists is returned when explicitly creating a book for a
	// symbol that already has one
	ErrBookExists = errors.New("order book for this symbol already exists")

	// ErrUnknownSymbol is returned when an operation targets a symbol
	// with no order book
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// shard is one symbol's serialization domain: the book, its mutex, the
// per-symbol event sequence and a lock-free depth snapshot for the
// read side. Every mutation happens under mu; the snapshot is swapped
// in before the mutex is released so queries never touch the matching
// path.
type shard struct {
	mu    sync.Mutex
	book  *core.OrderBook
	seq   uint64
	depth atomic.Pointer[core.Depth]
}

func newShard(symbol string) *shard {
	s := &shard{
		book: core.NewOrderBook(symbol),
	}
	s.depth.Store(s.book.Depth())
	return s
}

// nextSeq returns the next per-symbol sequence number. Caller holds mu.
func (s *shard) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// refresh rebuilds the depth snapshot. Caller holds mu.
func (s *shard) refresh() {
	s.depth.Store(s.book.Depth())
}

// Registry owns the symbol → order book mapping. Symbol creation is a
// thin administrative concern; the matching core only ever sees one
// book at a time.
type Registry struct {
	mu     sync.RWMutex
	shards map[string]*shard
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		shards: make(map[string]*shard),
	}
}

// Create explicitly creates a book for the symbol
func (r *Registry) Create(symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.shards[symbol]; exists {
		return ErrBookExists
	}
	r.shards[symbol] = newShard(symbol)
	return nil
}

// Exists reports whether the symbol has a book
func (r *Registry) Exists(symbol string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.shards[symbol]
	return exists
}

// Symbols returns all known symbols, sorted
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	symbols := make([]string, 0, len(r.shards))
	for symbol := range r.shards {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// getOrCreate returns the symbol's shard, creating it on first use
func (r *Registry) getOrCreate(symbol string) *shard {
	r.mu.RLock()
	s, exists := r.shards[symbol]
	r.mu.RUnlock()
	if exists {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, exists = r.shards[symbol]; exists {
		return s
	}
	s = newShard(symbol)
	r.shards[symbol] = s
	return s
}

// lookup returns the symbol's shard without creating it
func (r *Registry) lookup(symbol string) (*shard, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, exists := r.shards[symbol]
	return s, exists
}
