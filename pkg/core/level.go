package core

import (
	"github.com/nikolaydubina/fpdecimal"
)

// PriceLevel holds the resting orders on one side of one symbol at one
// exact price, in arrival order (time priority), together with a cached
// total remaining volume. The cache is adjusted on every add, remove
// and fill so it always equals the sum of member remaining quantities.
//
// A level is not safe for concurrent use; callers serialize access at
// the order book level.
type PriceLevel struct {
	price  fpdecimal.Decimal
	side   Side
	orders []*Order
	volume fpdecimal.Decimal
}

// NewPriceLevel creates an empty level for (side, price)
func NewPriceLevel(price fpdecimal.Decimal, side Side) *PriceLevel {
	return &PriceLevel{
		price:  price,
		side:   side,
		volume: fpdecimal.Zero,
	}
}

// Price returns the level price
func (l *PriceLevel) Price() fpdecimal.Decimal {
	return l.price
}

// Side returns the side the level belongs to
func (l *PriceLevel) Side() Side {
	return l.side
}

// Len returns the number of queued orders
func (l *PriceLevel) Len() int {
	return len(l.orders)
}

// IsEmpty reports whether the level has no queued orders
func (l *PriceLevel) IsEmpty() bool {
	return len(l.orders) == 0
}

// Volume returns the cached total remaining quantity at this level
func (l *PriceLevel) Volume() fpdecimal.Decimal {
	return l.volume
}

// Orders returns a copy of the queue in time-priority order
func (l *PriceLevel) Orders() []*Order {
	out := make([]*Order, len(l.orders))
	copy(out, l.orders)
	return out
}

// AddOrder appends the order to the tail of the queue, preserving
// arrival order, and adds its remaining quantity to the cached volume.
func (l *PriceLevel) AddOrder(order *Order) {
	l.orders = append(l.orders, order)
	l.volume = l.volume.Add(order.Remaining())
}

// PeekFront returns the earliest-arrived resting order without removing
// it, or nil if the level is empty. This is the next fill candidate.
func (l *PriceLevel) PeekFront() *Order {
	if len(l.orders) == 0 {
		return nil
	}
	return l.orders[0]
}

// RemoveByID removes the order with the given id and decrements the
// cached volume by its current remaining quantity. Returns the removed
// order, or nil if it is not queued here. O(n); levels are shallow in
// practice.
func (l *PriceLevel) RemoveByID(id uint64) *Order {
	for i, order := range l.orders {
		if order.ID() == id {
			l.orders = append(l.orders[:i], l.orders[i+1:]...)
			l.volume = l.volume.Sub(order.Remaining())
			return order
		}
	}
	return nil
}

// reduceVolume subtracts an executed quantity from the cached volume.
// Called for fills, where the order stays queued but its remaining
// quantity shrank.
func (l *PriceLevel) reduceVolume(quantity fpdecimal.Decimal) {
	l.volume = l.volume.Sub(quantity)
}
