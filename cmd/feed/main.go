// Command feed tails the venue's Kafka event topic and pretty-prints
// each event. Intended for development and debugging.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/erain9/venue/pkg/messaging"
	"github.com/erain9/venue/pkg/messaging/kafka"
)

var (
	brokerAddr = flag.String("broker", "localhost:9092", "Kafka broker address")
	topic      = flag.String("topic", "venue-events", "Event topic")
	groupID    = flag.String("group", "venue-feed", "Consumer group id")
)

func main() {
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(*brokerAddr, *topic, *groupID, logger)
	defer consumer.Close()

	logger.Info().Str("broker", *brokerAddr).Str("topic", *topic).Msg("Tailing event stream")

	if err := consumer.Run(ctx, printEvent); err != nil {
		log.Fatalf("Consumer failed: %v", err)
	}
}

var (
	created   = color.New(color.FgGreen)
	cancelled = color.New(color.FgYellow)
	traded    = color.New(color.FgCyan, color.Bold)
)

func printEvent(event messaging.Event) error {
	switch e := event.(type) {
	case messaging.OrderCreated:
		created.Printf("[%s #%d] CREATED order=%d %s %s @ %s\n",
			e.Symbol, e.Sequence, e.OrderID, e.Side, e.Quantity, e.Price)
	case messaging.OrderCancelled:
		cancelled.Printf("[%s #%d] CANCELLED order=%d\n",
			e.Symbol, e.Sequence, e.OrderID)
	case messaging.TradeExecuted:
		traded.Printf("[%s #%d] TRADE %s @ %s buy=%d sell=%d maker=%s\n",
			e.Symbol, e.Sequence, e.Quantity, e.Price, e.BuyOrderID, e.SellOrderID, e.MakerSide)
	}
	return nil
}
