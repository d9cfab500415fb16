package core

import (
	"encoding/json"
	"time"

	"github.com/nikolaydubina/fpdecimal"
)

// Side represents buy or sell side of the order
type Side int

// Order sides
const (
	Sell Side = iota
	Buy
)

// String returns side as string
func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the other side of the book
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Status represents the lifecycle state of an order. It is derived from
// the filled quantity, except for CANCELLED which is set explicitly.
type Status string

// Order statuses
const (
	StatusOpen      Status = "OPEN"
	StatusPartial   Status = "PARTIAL"
	StatusFilled    Status = "FILLED"
	StatusCancelled Status = "CANCELLED"
)

// Order stores information about a single limit order. The identity
// fields (id, symbol, side, quantity, price) are immutable after
// construction; only the filled quantity and status change, and only
// through Fill and Cancel.
type Order struct {
	id        uint64
	symbol    string
	side      Side
	quantity  fpdecimal.Decimal
	price     fpdecimal.Decimal
	filled    fpdecimal.Decimal
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

// NewLimitOrder creates a new limit order with an already-assigned id.
func NewLimitOrder(id uint64, symbol string, side Side, quantity, price fpdecimal.Decimal) (*Order, error) {
	if quantity.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidQuantity
	}

	if price.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidPrice
	}

	now := time.Now().UTC()
	return &Order{
		id:        id,
		symbol:    symbol,
		side:      side,
		quantity:  quantity,
		price:     price,
		filled:    fpdecimal.Zero,
		status:    StatusOpen,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ID returns the order id
func (o *Order) ID() uint64 {
	return o.id
}

// Symbol returns the symbol the order was placed on
func (o *Order) Symbol() string {
	return o.symbol
}

// Side returns side of the Order
func (o *Order) Side() Side {
	return o.side
}

// Quantity returns the original order quantity
func (o *Order) Quantity() fpdecimal.Decimal {
	return o.quantity
}

// Price returns the limit price
func (o *Order) Price() fpdecimal.Decimal {
	return o.price
}

// Filled returns the cumulative filled quantity
func (o *Order) Filled() fpdecimal.Decimal {
	return o.filled
}

// Remaining returns the unfilled quantity
func (o *Order) Remaining() fpdecimal.Decimal {
	return o.quantity.Sub(o.filled)
}

// Status returns the current order status
func (o *Order) Status() Status {
	return o.status
}

// CreatedAt returns the order creation time
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt returns the time of the last fill or cancel
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// IsFilled returns true once the full quantity has been executed
func (o *Order) IsFilled() bool {
	return o.filled.Equal(o.quantity)
}

// Copy returns a detached copy of the order frozen at its current
// state. The book keeps mutating the original on later fills; callers
// outside the owning shard's lock must only ever see copies.
func (o *Order) Copy() *Order {
	c := *o
	return &c
}

// Fill applies an execution of the given amount to the order and
// recomputes the status. The amount must be positive and must not
// exceed the remaining quantity; a violation means the matching loop's
// arithmetic is broken and is reported, never applied.
func (o *Order) Fill(amount fpdecimal.Decimal) error {
	if amount.LessThanOrEqual(fpdecimal.Zero) {
		return ErrInvalidQuantity
	}
	if amount.GreaterThan(o.Remaining()) {
		return ErrFillExceedsRemaining
	}

	o.filled = o.filled.Add(amount)
	o.updatedAt = time.Now().UTC()

	if o.IsFilled() {
		o.status = StatusFilled
	} else if o.filled.GreaterThan(fpdecimal.Zero) {
		o.status = StatusPartial
	}

	return nil
}

// Cancel marks the order cancelled. Fills already executed stand.
func (o *Order) Cancel() {
	o.status = StatusCancelled
	o.updatedAt = time.Now().UTC()
}

// MarshalJSON implements custom JSON marshaling for Order
func (o *Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        uint64 `json:"id"`
		Symbol    string `json:"symbol"`
		Side      string `json:"side"`
		Quantity  string `json:"quantity"`
		Price     string `json:"price"`
		Filled    string `json:"filled"`
		Remaining string `json:"remaining"`
		Status    Status `json:"status"`
	}{
		ID:        o.id,
		Symbol:    o.symbol,
		Side:      o.side.String(),
		Quantity:  o.quantity.String(),
		Price:     o.price.String(),
		Filled:    o.filled.String(),
		Remaining: o.Remaining().String(),
		Status:    o.status,
	})
}

// String implements fmt.Stringer interface
func (o *Order) String() string {
	j, _ := o.MarshalJSON()
	return string(j)
}
