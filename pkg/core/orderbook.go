package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/btree"
	"github.com/nikolaydubina/fpdecimal"
)

// OrderBook is the in-memory book for a single symbol: two price-sorted
// level collections plus an id index for O(1) direct lookup. The index
// and the level collections move together: an order is either present
// in both or in neither.
//
// The book itself is not synchronized; all mutating operations for a
// symbol are serialized by the owning engine shard.
type OrderBook struct {
	symbol string
	bids   *btree.BTreeG[*PriceLevel]
	asks   *btree.BTreeG[*PriceLevel]
	orders map[uint64]*Order
}

const levelTreeDegree = 8

// NewOrderBook creates an empty book for the symbol
func NewOrderBook(symbol string) *OrderBook {
	byPrice := func(a, b *PriceLevel) bool {
		return a.price.LessThan(b.price)
	}

	return &OrderBook{
		symbol: symbol,
		bids:   btree.NewG(levelTreeDegree, byPrice),
		asks:   btree.NewG(levelTreeDegree, byPrice),
		orders: make(map[uint64]*Order),
	}
}

// Symbol returns the symbol this book belongs to
func (ob *OrderBook) Symbol() string {
	return ob.symbol
}

// Len returns the number of resting orders on both sides
func (ob *OrderBook) Len() int {
	return len(ob.orders)
}

// GetOrder returns the order with the given id, or nil
func (ob *OrderBook) GetOrder(id uint64) *Order {
	return ob.orders[id]
}

// AddOrder queues the order at its (side, price) level, creating the
// level if needed, and inserts it into the id index.
func (ob *OrderBook) AddOrder(order *Order) error {
	if _, exists := ob.orders[order.ID()]; exists {
		return ErrOrderExists
	}

	tree := ob.sideTree(order.Side())
	probe := &PriceLevel{price: order.Price()}
	level, ok := tree.Get(probe)
	if !ok {
		level = NewPriceLevel(order.Price(), order.Side())
		tree.ReplaceOrInsert(level)
	}

	level.AddOrder(order)
	ob.orders[order.ID()] = order
	return nil
}

// RemoveOrder removes the order from its level and from the id index,
// excising the level if it became empty. Returns the removed order, or
// ErrOrderNotFound if the id is unknown.
func (ob *OrderBook) RemoveOrder(id uint64) (*Order, error) {
	order, exists := ob.orders[id]
	if !exists {
		return nil, ErrOrderNotFound
	}

	tree := ob.sideTree(order.Side())
	probe := &PriceLevel{price: order.Price()}
	if level, ok := tree.Get(probe); ok {
		level.RemoveByID(id)
		if level.IsEmpty() {
			tree.Delete(level)
		}
	}

	delete(ob.orders, id)
	return order, nil
}

// ApplyFill executes quantity against the order, keeps the owning
// level's cached volume in sync, and removes the order from the book
// once it is fully filled.
func (ob *OrderBook) ApplyFill(order *Order, quantity fpdecimal.Decimal) error {
	if err := order.Fill(quantity); err != nil {
		return err
	}

	tree := ob.sideTree(order.Side())
	probe := &PriceLevel{price: order.Price()}
	if level, ok := tree.Get(probe); ok {
		level.reduceVolume(quantity)
	}

	if order.IsFilled() {
		if _, err := ob.RemoveOrder(order.ID()); err != nil {
			return err
		}
	}
	return nil
}

// BestBid returns the highest-priced bid level, or nil if the bid side
// is empty
func (ob *OrderBook) BestBid() *PriceLevel {
	if level, ok := ob.bids.Max(); ok {
		return level
	}
	return nil
}

// BestAsk returns the lowest-priced ask level, or nil if the ask side
// is empty
func (ob *OrderBook) BestAsk() *PriceLevel {
	if level, ok := ob.asks.Min(); ok {
		return level
	}
	return nil
}

// DepthLevel is one aggregated (price, volume) pair of a book snapshot
type DepthLevel struct {
	Price  fpdecimal.Decimal
	Volume fpdecimal.Decimal
}

// MarshalJSON implements json.Marshaler
func (d DepthLevel) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"price":%q,"volume":%q}`, d.Price.String(), d.Volume.String())), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (d *DepthLevel) UnmarshalJSON(data []byte) error {
	var raw struct {
		Price  string `json:"price"`
		Volume string `json:"volume"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	price, err := fpdecimal.FromString(raw.Price)
	if err != nil {
		return fmt.Errorf("parse depth price: %w", err)
	}
	volume, err := fpdecimal.FromString(raw.Volume)
	if err != nil {
		return fmt.Errorf("parse depth volume: %w", err)
	}

	d.Price = price
	d.Volume = volume
	return nil
}

// Depth is an aggregated snapshot of a book, best price first on each
// side
type Depth struct {
	Symbol string       `json:"symbol"`
	Bids   []DepthLevel `json:"bids"`
	Asks   []DepthLevel `json:"asks"`
}

// Depth builds an aggregated snapshot of the book: bids descending,
// asks ascending, best price first on both sides.
func (ob *OrderBook) Depth() *Depth {
	depth := &Depth{
		Symbol: ob.symbol,
		Bids:   make([]DepthLevel, 0, ob.bids.Len()),
		Asks:   make([]DepthLevel, 0, ob.asks.Len()),
	}

	ob.bids.Descend(func(level *PriceLevel) bool {
		depth.Bids = append(depth.Bids, DepthLevel{Price: level.Price(), Volume: level.Volume()})
		return true
	})
	ob.asks.Ascend(func(level *PriceLevel) bool {
		depth.Asks = append(depth.Asks, DepthLevel{Price: level.Price(), Volume: level.Volume()})
		return true
	})

	return depth
}

// String implements fmt.Stringer interface
func (ob *OrderBook) String() string {
	builder := strings.Builder{}

	builder.WriteString("Ask:")
	ob.asks.Ascend(func(level *PriceLevel) bool {
		builder.WriteString(fmt.Sprintf("\n%s -> orders: %d, volume: %s", level.Price(), level.Len(), level.Volume()))
		return true
	})
	builder.WriteString("\nBid:")
	ob.bids.Descend(func(level *PriceLevel) bool {
		builder.WriteString(fmt.Sprintf("\n%s -> orders: %d, volume: %s", level.Price(), level.Len(), level.Volume()))
		return true
	})
	builder.WriteString("\n")

	return builder.String()
}

func (ob *OrderBook) sideTree(side Side) *btree.BTreeG[*PriceLevel] {
	if side == Buy {
		return ob.bids
	}
	return ob.asks
}
