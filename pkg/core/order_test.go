package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/nikolaydubina/fpdecimal"
)

func TestSideString(t *testing.T) {
	tests := []struct {
		name string
		side Side
		want string
	}{
		{"Buy", Buy, "BUY"},
		{"Sell", Sell, "SELL"},
		{"Invalid", Side(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.side.String(); got != tt.want {
				t.Errorf("Side.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSideOpposite(t *testing.T) {
	if Buy.Opposite() != Sell {
		t.Error("Expected opposite of Buy to be Sell")
	}
	if Sell.Opposite() != Buy {
		t.Error("Expected opposite of Sell to be Buy")
	}
}

func TestNewLimitOrder(t *testing.T) {
	quantity := fpdecimal.FromFloat(10.5)
	price := fpdecimal.FromFloat(100.0)

	order, err := NewLimitOrder(42, "BTCUSD", Buy, quantity, price)
	if err != nil {
		t.Fatalf("NewLimitOrder() error = %v", err)
	}

	if order.ID() != 42 {
		t.Errorf("Expected ID 42, got %d", order.ID())
	}
	if order.Symbol() != "BTCUSD" {
		t.Errorf("Expected symbol BTCUSD, got %s", order.Symbol())
	}
	if order.Side() != Buy {
		t.Errorf("Expected Side Buy, got %v", order.Side())
	}
	if !order.Quantity().Equal(quantity) {
		t.Errorf("Expected Quantity %v, got %v", quantity, order.Quantity())
	}
	if !order.Price().Equal(price) {
		t.Errorf("Expected Price %v, got %v", price, order.Price())
	}
	if !order.Filled().Equal(fpdecimal.Zero) {
		t.Errorf("Expected zero filled, got %v", order.Filled())
	}
	if !order.Remaining().Equal(quantity) {
		t.Errorf("Expected Remaining %v, got %v", quantity, order.Remaining())
	}
	if order.Status() != StatusOpen {
		t.Errorf("Expected status OPEN, got %v", order.Status())
	}
	if order.IsFilled() {
		t.Error("Expected new order not to be filled")
	}
}

func TestNewLimitOrderValidation(t *testing.T) {
	tests := []struct {
		name     string
		quantity fpdecimal.Decimal
		price    fpdecimal.Decimal
		wantErr  error
	}{
		{"ZeroQuantity", fpdecimal.Zero, fpdecimal.FromFloat(100.0), ErrInvalidQuantity},
		{"NegativeQuantity", fpdecimal.FromFloat(-1.0), fpdecimal.FromFloat(100.0), ErrInvalidQuantity},
		{"ZeroPrice", fpdecimal.FromFloat(1.0), fpdecimal.Zero, ErrInvalidPrice},
		{"NegativePrice", fpdecimal.FromFloat(1.0), fpdecimal.FromFloat(-100.0), ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLimitOrder(1, "BTCUSD", Buy, tt.quantity, tt.price)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewLimitOrder() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOrderFill(t *testing.T) {
	order, err := NewLimitOrder(1, "BTCUSD", Sell, fpdecimal.FromFloat(10.0), fpdecimal.FromFloat(100.0))
	if err != nil {
		t.Fatalf("NewLimitOrder() error = %v", err)
	}

	if err := order.Fill(fpdecimal.FromFloat(4.0)); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if order.Status() != StatusPartial {
		t.Errorf("Expected status PARTIAL, got %v", order.Status())
	}
	if !order.Remaining().Equal(fpdecimal.FromFloat(6.0)) {
		t.Errorf("Expected remaining 6, got %v", order.Remaining())
	}

	if err := order.Fill(fpdecimal.FromFloat(6.0)); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if order.Status() != StatusFilled {
		t.Errorf("Expected status FILLED, got %v", order.Status())
	}
	if !order.IsFilled() {
		t.Error("Expected order to be filled")
	}
	if !order.Remaining().Equal(fpdecimal.Zero) {
		t.Errorf("Expected zero remaining, got %v", order.Remaining())
	}
}

func TestOrderFillRejectsNonPositive(t *testing.T) {
	order, _ := NewLimitOrder(1, "BTCUSD", Buy, fpdecimal.FromFloat(5.0), fpdecimal.FromFloat(100.0))
	order.Fill(fpdecimal.FromFloat(2.0))

	// Filling never reduces the filled quantity
	for _, amount := range []fpdecimal.Decimal{fpdecimal.Zero, fpdecimal.FromFloat(-1.0)} {
		if err := order.Fill(amount); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("Fill(%v) error = %v, want ErrInvalidQuantity", amount, err)
		}
	}
	if !order.Filled().Equal(fpdecimal.FromFloat(2.0)) {
		t.Errorf("Expected filled 2 after rejected fills, got %v", order.Filled())
	}
	if order.Status() != StatusPartial {
		t.Errorf("Expected status PARTIAL after rejected fills, got %v", order.Status())
	}
}

func TestOrderCopyDetached(t *testing.T) {
	order, _ := NewLimitOrder(1, "BTCUSD", Buy, fpdecimal.FromFloat(5.0), fpdecimal.FromFloat(100.0))

	snapshot := order.Copy()
	order.Fill(fpdecimal.FromFloat(5.0))

	// The copy keeps the state it was taken at
	if snapshot.Status() != StatusOpen {
		t.Errorf("Expected copy status OPEN, got %v", snapshot.Status())
	}
	if !snapshot.Filled().Equal(fpdecimal.Zero) {
		t.Errorf("Expected copy filled 0, got %v", snapshot.Filled())
	}
	if order.Status() != StatusFilled {
		t.Errorf("Expected original status FILLED, got %v", order.Status())
	}
}

func TestOrderFillExceedsRemaining(t *testing.T) {
	order, _ := NewLimitOrder(1, "BTCUSD", Buy, fpdecimal.FromFloat(5.0), fpdecimal.FromFloat(100.0))

	err := order.Fill(fpdecimal.FromFloat(6.0))
	if !errors.Is(err, ErrFillExceedsRemaining) {
		t.Errorf("Fill() error = %v, want ErrFillExceedsRemaining", err)
	}
	// A rejected fill must leave the order untouched
	if !order.Filled().Equal(fpdecimal.Zero) {
		t.Errorf("Expected zero filled after rejected fill, got %v", order.Filled())
	}
	if order.Status() != StatusOpen {
		t.Errorf("Expected status OPEN after rejected fill, got %v", order.Status())
	}
}

func TestOrderCancel(t *testing.T) {
	order, _ := NewLimitOrder(1, "BTCUSD", Buy, fpdecimal.FromFloat(5.0), fpdecimal.FromFloat(100.0))
	order.Cancel()
	if order.Status() != StatusCancelled {
		t.Errorf("Expected status CANCELLED, got %v", order.Status())
	}
}

func TestOrderMarshalJSON(t *testing.T) {
	order, _ := NewLimitOrder(7, "ETHUSD", Sell, fpdecimal.FromFloat(2.5), fpdecimal.FromFloat(1800.0))

	data, err := json.Marshal(order)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if decoded["symbol"] != "ETHUSD" {
		t.Errorf("Expected symbol ETHUSD, got %v", decoded["symbol"])
	}
	if decoded["side"] != "SELL" {
		t.Errorf("Expected side SELL, got %v", decoded["side"])
	}
	// Decimals travel as strings
	if _, ok := decoded["quantity"].(string); !ok {
		t.Errorf("Expected quantity to be a string, got %T", decoded["quantity"])
	}
}
