package core

import (
	"time"

	"github.com/nikolaydubina/fpdecimal"
)

// Match crosses the incoming order against the best opposing level
// until the order is filled, the opposing side is exhausted, or prices
// no longer cross. Fills follow price-time priority: the oldest order
// at the best opposing price is served first, and every trade executes
// at the resting (maker) order's price.
//
// Match mutates only the book and the orders it is handed; event
// construction and publication belong to the caller. The incoming order
// is expected to already rest in the book; it leaves the book through
// ApplyFill the moment it is fully executed.
func Match(book *OrderBook, incoming *Order) ([]*Trade, error) {
	var trades []*Trade

	for !incoming.IsFilled() {
		var opposing *PriceLevel
		if incoming.Side() == Buy {
			opposing = book.BestAsk()
		} else {
			opposing = book.BestBid()
		}
		if opposing == nil {
			break
		}

		crosses := (incoming.Side() == Buy && opposing.Price().LessThanOrEqual(incoming.Price())) ||
			(incoming.Side() == Sell && opposing.Price().GreaterThanOrEqual(incoming.Price()))
		if !crosses {
			break
		}

		resting := opposing.PeekFront()
		fillQty := minDecimal(resting.Remaining(), incoming.Remaining())

		buyID, sellID := incoming.ID(), resting.ID()
		if incoming.Side() == Sell {
			buyID, sellID = resting.ID(), incoming.ID()
		}
		price := resting.Price()
		makerSide := resting.Side()

		if err := book.ApplyFill(resting, fillQty); err != nil {
			return trades, err
		}
		if err := book.ApplyFill(incoming, fillQty); err != nil {
			return trades, err
		}

		trades = append(trades, &Trade{
			Symbol:      book.Symbol(),
			BuyOrderID:  buyID,
			SellOrderID: sellID,
			Price:       price,
			Quantity:    fillQty,
			MakerSide:   makerSide,
			ExecutedAt:  time.Now().UTC(),
		})
	}

	return trades, nil
}

// minDecimal returns the minimum of two decimals
func minDecimal(a, b fpdecimal.Decimal) fpdecimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
