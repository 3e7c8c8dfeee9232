// Package domain holds the core value types shared by the order book,
// the exchange dispatcher and the wire protocol: sides, orders and
// deals. Nothing here is tied to a trading pair or to persistence.
package domain

import "github.com/google/uuid"

// Side is the two-valued tag of an order: Buy or Sell.
type Side int

const (
	Buy Side = iota
	Sell
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// ParseSide parses the wire representation of a side ("buy"/"sell").
func ParseSide(s string) (Side, bool) {
	switch s {
	case "buy":
		return Buy, true
	case "sell":
		return Sell, true
	default:
		return Side(0), false
	}
}

// Order is a single limit order. Price and volume are integers in a
// pair-defined minor unit. Once an ID is emitted it is never reused
// across the process lifetime.
type Order struct {
	ID     uuid.UUID
	Side   Side
	Price  uint64
	Volume uint64
}

// NewOrder creates a fresh taker order with a newly minted ID.
func NewOrder(side Side, price, volume uint64) Order {
	return Order{ID: uuid.New(), Side: side, Price: price, Volume: volume}
}

// Deal is the result of one maker order matching part or all of a
// taker order. TakerOrder and MakerOrder are value snapshots captured
// at the moment of the deal: TakerOrder.Volume is the taker's
// remaining volume immediately before this deal's volume is
// subtracted from it. Deals are append-only and never modified after
// creation.
type Deal struct {
	TakerOrder Order
	MakerOrder Order
	Volume     uint64
}
