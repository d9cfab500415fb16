// Package engine ties the matching core to the outside world: it owns
// the per-symbol order books, generates order ids, validates incoming
// requests, serializes mutations per symbol and publishes the
// resulting event stream.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/erain9/venue/pkg/core"
	"github.com/erain9/venue/pkg/id"
	"github.com/erain9/venue/pkg/messaging"
	venueotel "github.com/erain9/venue/pkg/otel"
)

// Engine orchestrates order flow for every symbol the venue trades.
// Each symbol is serialized independently; operations on different
// symbols run concurrently.
type Engine struct {
	registry  *Registry
	ids       *id.Generator
	validator Validator
	publisher messaging.EventPublisher
	logger    zerolog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithValidator replaces the default validation rules
func WithValidator(v Validator) Option {
	return func(e *Engine) {
		e.validator = v
	}
}

// WithLogger sets the engine's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine. The publisher receives every event the
// engine emits; pass messaging.NopPublisher{} to run without a
// downstream.
func NewEngine(ids *id.Generator, publisher messaging.EventPublisher, opts ...Option) *Engine {
	e := &Engine{
		registry:  NewRegistry(),
		ids:       ids,
		validator: NewLimitRules(),
		publisher: publisher,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateBook explicitly creates an order book for the symbol. Books
// are also created lazily on first order, so this is only needed when
// a symbol must exist before any order arrives.
func (e *Engine) CreateBook(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return ValidationErrors{{Field: "symbol", Message: "invalid symbol"}}
	}
	if err := e.registry.Create(symbol); err != nil {
		return err
	}
	e.logger.Info().Str("symbol", symbol).Msg("Order book created")
	return nil
}

// Symbols returns every symbol with an order book, sorted
func (e *Engine) Symbols() []string {
	return e.registry.Symbols()
}

// CreateOrder validates, books and matches a new limit order. It
// returns the order in its post-matching state. The OrderCreated
// event and one TradeExecuted event per fill are published after the
// book mutation commits; a publish failure is logged but never rolls
// the book back.
func (e *Engine) CreateOrder(ctx context.Context, symbol string, side core.Side, quantity, price string) (*core.Order, error) {
	ctx, span := venueotel.StartOrderSpan(ctx, venueotel.SpanCreateOrder,
		attribute.String(venueotel.AttrSymbol, symbol),
		attribute.String(venueotel.AttrSide, side.String()),
		attribute.String(venueotel.AttrQuantity, quantity),
		attribute.String(venueotel.AttrPrice, price),
	)
	defer span.End()

	qty, qtyErr := core.ParseDecimal(quantity)
	px, pxErr := core.ParseDecimal(price)

	var errs ValidationErrors
	if qtyErr != nil {
		errs = append(errs, ValidationError{Field: "quantity", Message: "not a valid decimal"})
	}
	if pxErr != nil {
		errs = append(errs, ValidationError{Field: "price", Message: "not a valid decimal"})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	if errs = e.validator.Validate(symbol, side, qty, px); len(errs) > 0 {
		return nil, errs
	}

	orderID, err := e.ids.NextID()
	if err != nil {
		e.logger.Error().Err(err).Msg("ID generation failed, rejecting order")
		return nil, err
	}
	venueotel.AddAttributes(ctx, attribute.Int64(venueotel.AttrOrderID, int64(orderID)))

	order, err := core.NewLimitOrder(orderID, symbol, side, qty, px)
	if err != nil {
		return nil, err
	}

	sh := e.registry.getOrCreate(symbol)

	sh.mu.Lock()
	if err := sh.book.AddOrder(order); err != nil {
		sh.mu.Unlock()
		return nil, err
	}

	_, matchSpan := venueotel.StartOrderSpan(ctx, venueotel.SpanMatchOrder)
	trades, err := core.Match(sh.book, order)
	matchSpan.End()
	if err != nil {
		// The book rejected a fill it just agreed to. Nothing sane
		// can be done with this shard anymore.
		sh.mu.Unlock()
		e.logger.Error().Err(err).Uint64("order_id", orderID).Msg("Matching failed after booking")
		return nil, err
	}

	events := make([]messaging.Event, 0, len(trades)+1)
	events = append(events, messaging.OrderCreated{
		Sequence:  sh.nextSeq(),
		Symbol:    symbol,
		OrderID:   orderID,
		Side:      side.String(),
		Quantity:  qty.String(),
		Price:     px.String(),
		Timestamp: order.CreatedAt().UnixMilli(),
	})
	for _, trade := range trades {
		events = append(events, messaging.TradeExecuted{
			Sequence:    sh.nextSeq(),
			Symbol:      symbol,
			BuyOrderID:  trade.BuyOrderID,
			SellOrderID: trade.SellOrderID,
			Price:       trade.Price.String(),
			Quantity:    trade.Quantity.String(),
			MakerSide:   trade.MakerSide.String(),
			Timestamp:   trade.ExecutedAt.UnixMilli(),
		})
	}
	sh.refresh()
	// The live order stays with the book and keeps changing under the
	// shard lock; hand the caller a frozen copy.
	result := order.Copy()
	sh.mu.Unlock()

	venueotel.AddAttributes(ctx, attribute.Int(venueotel.AttrTradeCount, len(trades)))

	e.publish(ctx, events)

	e.logger.Debug().
		Uint64("order_id", orderID).
		Str("symbol", symbol).
		Str("side", side.String()).
		Int("trades", len(trades)).
		Str("status", string(result.Status())).
		Msg("Order processed")

	return result, nil
}

// CancelOrder removes a resting order from its book. Cancelling an
// unknown or already inactive order returns core.ErrOrderNotFound.
func (e *Engine) CancelOrder(ctx context.Context, symbol string, orderID uint64) (*core.Order, error) {
	ctx, span := venueotel.StartOrderSpan(ctx, venueotel.SpanCancelOrder,
		attribute.String(venueotel.AttrSymbol, symbol),
		attribute.Int64(venueotel.AttrOrderID, int64(orderID)),
	)
	defer span.End()

	sh, exists := e.registry.lookup(symbol)
	if !exists {
		return nil, core.ErrOrderNotFound
	}

	sh.mu.Lock()
	order, err := sh.book.RemoveOrder(orderID)
	if err != nil {
		sh.mu.Unlock()
		return nil, err
	}
	order.Cancel()
	event := messaging.OrderCancelled{
		Sequence:  sh.nextSeq(),
		Symbol:    symbol,
		OrderID:   orderID,
		Timestamp: time.Now().UnixMilli(),
	}
	sh.refresh()
	result := order.Copy()
	sh.mu.Unlock()

	e.publish(ctx, []messaging.Event{event})

	e.logger.Debug().Uint64("order_id", orderID).Str("symbol", symbol).Msg("Order cancelled")

	return result, nil
}

// GetOrder returns a point-in-time copy of the order, or
// core.ErrOrderNotFound. Filled and cancelled orders are no longer on
// the book and are not found.
func (e *Engine) GetOrder(symbol string, orderID uint64) (*core.Order, error) {
	sh, exists := e.registry.lookup(symbol)
	if !exists {
		return nil, core.ErrOrderNotFound
	}

	sh.mu.Lock()
	order := sh.book.GetOrder(orderID)
	if order != nil {
		order = order.Copy()
	}
	sh.mu.Unlock()

	if order == nil {
		return nil, core.ErrOrderNotFound
	}
	return order, nil
}

// AggregatedBook returns the symbol's current depth. The snapshot is
// read from an atomic pointer, so this never contends with matching.
func (e *Engine) AggregatedBook(symbol string) (*core.Depth, error) {
	sh, exists := e.registry.lookup(symbol)
	if !exists {
		return nil, ErrUnknownSymbol
	}
	return sh.depth.Load(), nil
}

// publish hands the batch to the publisher. The book mutation has
// already committed; failure here is logged and dropped, recovery is
// the snapshot store's job.
func (e *Engine) publish(ctx context.Context, events []messaging.Event) {
	if len(events) == 0 {
		return
	}
	ctx, span := venueotel.StartOrderSpan(ctx, venueotel.SpanPublishEvents,
		attribute.Int(venueotel.AttrEventCount, len(events)),
	)
	defer span.End()

	if err := e.publisher.PublishBatch(ctx, events); err != nil {
		e.logger.Error().Err(err).
			Str("symbol", events[0].EventSymbol()).
			Int("count", len(events)).
			Msg("Event publish failed, book state is unaffected")
	}
}
