package messaging

import (
	"encoding/json"
	"fmt"
)

// EventKind discriminates the event variants carried on the order
// event stream. Consumers switch on it exhaustively; adding a kind is
// a compile-visible change to Decode below.
type EventKind string

// Event kinds
const (
	KindOrderCreated   EventKind = "ORDER_CREATED"
	KindOrderCancelled EventKind = "ORDER_CANCELLED"
	KindTradeExecuted  EventKind = "TRADE_EXECUTED"
)

// Event is one immutable entry on a symbol's event stream. Sequence
// numbers are per-symbol and strictly increasing; consumers use them
// to detect gaps and ordering violations.
type Event interface {
	EventKind() EventKind
	EventSymbol() string
	EventSequence() uint64
}

// OrderCreated is emitted when a new order is accepted into the book,
// before any trades it triggers.
type OrderCreated struct {
	Sequence  uint64 `json:"sequence"`
	Symbol    string `json:"symbol"`
	OrderID   uint64 `json:"orderId"`
	Side      string `json:"side"`
	Quantity  string `json:"quantity"`
	Price     string `json:"price"`
	Timestamp int64  `json:"timestamp"`
}

// EventKind implements Event
func (e OrderCreated) EventKind() EventKind { return KindOrderCreated }

// EventSymbol implements Event
func (e OrderCreated) EventSymbol() string { return e.Symbol }

// EventSequence implements Event
func (e OrderCreated) EventSequence() uint64 { return e.Sequence }

// OrderCancelled is emitted when an order is removed from the book by
// an explicit cancel. Fills executed before the cancel stand.
type OrderCancelled struct {
	Sequence  uint64 `json:"sequence"`
	Symbol    string `json:"symbol"`
	OrderID   uint64 `json:"orderId"`
	Timestamp int64  `json:"timestamp"`
}

// EventKind implements Event
func (e OrderCancelled) EventKind() EventKind { return KindOrderCancelled }

// EventSymbol implements Event
func (e OrderCancelled) EventSymbol() string { return e.Symbol }

// EventSequence implements Event
func (e OrderCancelled) EventSequence() uint64 { return e.Sequence }

// TradeExecuted is emitted once per trade produced by a match. The
// price is the resting (maker) order's price.
type TradeExecuted struct {
	Sequence    uint64 `json:"sequence"`
	Symbol      string `json:"symbol"`
	BuyOrderID  uint64 `json:"buyOrderId"`
	SellOrderID uint64 `json:"sellOrderId"`
	Price       string `json:"price"`
	Quantity    string `json:"quantity"`
	MakerSide   string `json:"makerSide"`
	Timestamp   int64  `json:"timestamp"`
}

// EventKind implements Event
func (e TradeExecuted) EventKind() EventKind { return KindTradeExecuted }

// EventSymbol implements Event
func (e TradeExecuted) EventSymbol() string { return e.Symbol }

// EventSequence implements Event
func (e TradeExecuted) EventSequence() uint64 { return e.Sequence }

// envelope is the wire form: the kind tag plus the event payload
type envelope struct {
	Kind    EventKind       `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Encode serializes an event into its wire envelope
func Encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event.EventKind(), err)
	}
	return json.Marshal(envelope{Kind: event.EventKind(), Payload: payload})
}

// Decode deserializes a wire envelope back into its concrete event
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal event envelope: %w", err)
	}

	switch env.Kind {
	case KindOrderCreated:
		var e OrderCreated
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, err
		}
		return e, nil
	case KindOrderCancelled:
		var e OrderCancelled
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, err
		}
		return e, nil
	case KindTradeExecuted:
		var e TradeExecuted
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", env.Kind)
	}
}
