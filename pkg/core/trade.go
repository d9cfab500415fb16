package core

import (
	"time"

	"github.com/nikolaydubina/fpdecimal"
)

// Trade is an immutable record of a single cross between a resting and
// an incoming order. The price is always the resting (maker) order's
// price.
type Trade struct {
	Symbol      string
	BuyOrderID  uint64
	SellOrderID uint64
	Price       fpdecimal.Decimal
	Quantity    fpdecimal.Decimal
	MakerSide   Side
	ExecutedAt  time.Time
}
