package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span names for the order pipeline.
const (
	SpanCreateOrder   = "create_order"
	SpanMatchOrder    = "match_order"
	SpanCancelOrder   = "cancel_order"
	SpanPublishEvents = "publish_events"
)

// Common attribute keys used on order spans.
const (
	AttrOrderID    = "order.id"
	AttrSymbol     = "order.symbol"
	AttrSide       = "order.side"
	AttrQuantity   = "order.quantity"
	AttrPrice      = "order.price"
	AttrTradeCount = "match.trade_count"
	AttrEventCount = "publish.event_count"
)

// StartOrderSpan starts a span for an order pipeline step. With the
// no-op global tracer provider this is effectively free.
func StartOrderSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(TracerName)
	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

// AddAttributes attaches attributes to the span in ctx, if any.
func AddAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}
