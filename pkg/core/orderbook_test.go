package core

import (
	"errors"
	"testing"

	"github.com/nikolaydubina/fpdecimal"
)

func TestOrderBookAddOrder(t *testing.T) {
	book := NewOrderBook("BTCUSD")

	if err := book.AddOrder(mustOrder(t, 1, Buy, 5.0, 100.0)); err != nil {
		t.Fatalf("AddOrder() error = %v", err)
	}
	if book.Len() != 1 {
		t.Errorf("Expected 1 order, got %d", book.Len())
	}
	if book.GetOrder(1) == nil {
		t.Error("Expected to find order 1")
	}

	err := book.AddOrder(mustOrder(t, 1, Sell, 2.0, 101.0))
	if !errors.Is(err, ErrOrderExists) {
		t.Errorf("AddOrder() duplicate error = %v, want ErrOrderExists", err)
	}
}

func TestOrderBookRemoveOrder(t *testing.T) {
	book := NewOrderBook("BTCUSD")
	book.AddOrder(mustOrder(t, 1, Buy, 5.0, 100.0))

	order, err := book.RemoveOrder(1)
	if err != nil {
		t.Fatalf("RemoveOrder() error = %v", err)
	}
	if order.ID() != 1 {
		t.Errorf("Expected order 1, got %d", order.ID())
	}
	if book.Len() != 0 {
		t.Errorf("Expected empty book, got %d orders", book.Len())
	}
	// The emptied level must be gone from the bid side
	if book.BestBid() != nil {
		t.Error("Expected no best bid after removing the only order")
	}

	_, err = book.RemoveOrder(1)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("RemoveOrder() error = %v, want ErrOrderNotFound", err)
	}
}

func TestOrderBookBestPrices(t *testing.T) {
	book := NewOrderBook("BTCUSD")
	book.AddOrder(mustOrder(t, 1, Buy, 1.0, 99.0))
	book.AddOrder(mustOrder(t, 2, Buy, 1.0, 100.0))
	book.AddOrder(mustOrder(t, 3, Buy, 1.0, 98.0))
	book.AddOrder(mustOrder(t, 4, Sell, 1.0, 102.0))
	book.AddOrder(mustOrder(t, 5, Sell, 1.0, 101.0))
	book.AddOrder(mustOrder(t, 6, Sell, 1.0, 103.0))

	if best := book.BestBid(); !best.Price().Equal(fpdecimal.FromFloat(100.0)) {
		t.Errorf("Expected best bid 100, got %v", best.Price())
	}
	if best := book.BestAsk(); !best.Price().Equal(fpdecimal.FromFloat(101.0)) {
		t.Errorf("Expected best ask 101, got %v", best.Price())
	}
}

func TestOrderBookSamePriceSharesLevel(t *testing.T) {
	book := NewOrderBook("BTCUSD")
	book.AddOrder(mustOrder(t, 1, Buy, 2.0, 100.0))
	book.AddOrder(mustOrder(t, 2, Buy, 3.0, 100.0))

	level := book.BestBid()
	if level.Len() != 2 {
		t.Errorf("Expected 2 orders on the level, got %d", level.Len())
	}
	if !level.Volume().Equal(fpdecimal.FromFloat(5.0)) {
		t.Errorf("Expected level volume 5, got %v", level.Volume())
	}
}

func TestOrderBookApplyFill(t *testing.T) {
	book := NewOrderBook("BTCUSD")
	order := mustOrder(t, 1, Sell, 10.0, 100.0)
	book.AddOrder(order)

	if err := book.ApplyFill(order, fpdecimal.FromFloat(4.0)); err != nil {
		t.Fatalf("ApplyFill() error = %v", err)
	}
	if !book.BestAsk().Volume().Equal(fpdecimal.FromFloat(6.0)) {
		t.Errorf("Expected level volume 6, got %v", book.BestAsk().Volume())
	}

	// A fill that completes the order removes it from the book
	if err := book.ApplyFill(order, fpdecimal.FromFloat(6.0)); err != nil {
		t.Fatalf("ApplyFill() error = %v", err)
	}
	if book.GetOrder(1) != nil {
		t.Error("Expected filled order to be removed")
	}
	if book.BestAsk() != nil {
		t.Error("Expected empty ask side")
	}
}

func TestOrderBookDepth(t *testing.T) {
	book := NewOrderBook("BTCUSD")
	book.AddOrder(mustOrder(t, 1, Buy, 1.0, 99.0))
	book.AddOrder(mustOrder(t, 2, Buy, 2.0, 100.0))
	book.AddOrder(mustOrder(t, 3, Buy, 3.0, 100.0))
	book.AddOrder(mustOrder(t, 4, Sell, 1.0, 101.0))
	book.AddOrder(mustOrder(t, 5, Sell, 2.0, 103.0))

	depth := book.Depth()

	if depth.Symbol != "BTCUSD" {
		t.Errorf("Expected symbol BTCUSD, got %s", depth.Symbol)
	}
	if len(depth.Bids) != 2 || len(depth.Asks) != 2 {
		t.Fatalf("Expected 2 bid and 2 ask levels, got %d and %d", len(depth.Bids), len(depth.Asks))
	}
	// Bids descend, best first
	if !depth.Bids[0].Price.Equal(fpdecimal.FromFloat(100.0)) {
		t.Errorf("Expected first bid at 100, got %v", depth.Bids[0].Price)
	}
	if !depth.Bids[0].Volume.Equal(fpdecimal.FromFloat(5.0)) {
		t.Errorf("Expected first bid volume 5, got %v", depth.Bids[0].Volume)
	}
	if !depth.Bids[1].Price.Equal(fpdecimal.FromFloat(99.0)) {
		t.Errorf("Expected second bid at 99, got %v", depth.Bids[1].Price)
	}
	// Asks ascend, best first
	if !depth.Asks[0].Price.Equal(fpdecimal.FromFloat(101.0)) {
		t.Errorf("Expected first ask at 101, got %v", depth.Asks[0].Price)
	}
	if !depth.Asks[1].Price.Equal(fpdecimal.FromFloat(103.0)) {
		t.Errorf("Expected second ask at 103, got %v", depth.Asks[1].Price)
	}
}
