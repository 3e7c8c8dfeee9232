// Package protocol is the tagged command/event wire schema that flows
// between the gateway, the inbox/outbox transport and the exchange.
//
// Go has no native sum type, so each union is represented as a struct
// with a Type discriminant plus one field per variant's payload, and
// marshals itself to the externally-tagged JSON shape
// {"type": "...", ...fields}. This keeps every consumer's decode path
// a single switch on Type rather than a trait/interface hierarchy —
// the design note in spec.md calls for explicit match arms at every
// consumer, not virtual dispatch.
package protocol

import (
	"encoding/json"
	"fmt"

	"coreex/domain"

	"github.com/google/uuid"
)

// InboxMessageType discriminates the InboxMessage union.
type InboxMessageType string

const (
	TypePlaceOrder  InboxMessageType = "PlaceOrder"
	TypeCancelOrder InboxMessageType = "CancelOrder"
)

// InboxMessage is the tagged union of commands accepted from the
// inbox queue: PlaceOrder or CancelOrder. MsgID is a fresh UUID
// minted by the gateway and is the correlation id for the resulting
// OutboxEnvelope.
type InboxMessage struct {
	Type InboxMessageType

	MsgID uuid.UUID

	// PlaceOrder fields.
	Pair   string
	Side   domain.Side
	Price  uint64
	Volume uint64

	// CancelOrder fields.
	OrderID uuid.UUID
}

// NewPlaceOrder builds a PlaceOrder inbox message.
func NewPlaceOrder(msgID uuid.UUID, pair string, side domain.Side, price, volume uint64) InboxMessage {
	return InboxMessage{Type: TypePlaceOrder, MsgID: msgID, Pair: pair, Side: side, Price: price, Volume: volume}
}

// NewCancelOrder builds a CancelOrder inbox message.
func NewCancelOrder(msgID uuid.UUID, pair string, orderID uuid.UUID) InboxMessage {
	return InboxMessage{Type: TypeCancelOrder, MsgID: msgID, Pair: pair, OrderID: orderID}
}

type inboxWire struct {
	Type    InboxMessageType `json:"type"`
	MsgID   uuid.UUID        `json:"msg_id"`
	Pair    string           `json:"pair"`
	Side    string           `json:"side,omitempty"`
	Price   uint64           `json:"price,omitempty"`
	Volume  uint64           `json:"volume,omitempty"`
	OrderID uuid.UUID        `json:"order_id,omitempty"`
}

// MarshalJSON encodes the message in its externally-tagged wire form.
func (m InboxMessage) MarshalJSON() ([]byte, error) {
	w := inboxWire{Type: m.Type, MsgID: m.MsgID, Pair: m.Pair}
	switch m.Type {
	case TypePlaceOrder:
		w.Side = m.Side.String()
		w.Price = m.Price
		w.Volume = m.Volume
	case TypeCancelOrder:
		w.OrderID = m.OrderID
	default:
		return nil, fmt.Errorf("protocol: unknown inbox message type %q", m.Type)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the externally-tagged wire form, dispatching
// on the type discriminant before decoding variant-specific fields.
func (m *InboxMessage) UnmarshalJSON(data []byte) error {
	var w inboxWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case TypePlaceOrder:
		side, ok := domain.ParseSide(w.Side)
		if !ok {
			return fmt.Errorf("protocol: invalid side %q", w.Side)
		}
		*m = NewPlaceOrder(w.MsgID, w.Pair, side, w.Price, w.Volume)
	case TypeCancelOrder:
		*m = NewCancelOrder(w.MsgID, w.Pair, w.OrderID)
	default:
		return fmt.Errorf("protocol: unknown inbox message type %q", w.Type)
	}
	return nil
}

// OutboxMessageType discriminates the OutboxMessage union.
type OutboxMessageType string

const (
	TypeOrderPlaced    OutboxMessageType = "OrderPlaced"
	TypeOrderFilled    OutboxMessageType = "OrderFilled"
	TypeOrderCancelled OutboxMessageType = "OrderCancelled"
	TypeOrderNotFound  OutboxMessageType = "OrderNotFound"
)

// OutboxMessage is the tagged union of business events published to
// the outbox queue.
type OutboxMessage struct {
	Type OutboxMessageType

	// OrderPlaced fields.
	OrderID uuid.UUID
	Pair    string
	Side    domain.Side
	Price   uint64
	Volume  uint64

	// OrderFilled fields.
	MakerOrder domain.Order
	TakerOrder domain.Order

	// OrderCancelled / OrderNotFound share Pair and OrderID above.
}

// NewOrderPlaced builds an OrderPlaced outbox message.
func NewOrderPlaced(orderID uuid.UUID, pair string, side domain.Side, price, volume uint64) OutboxMessage {
	return OutboxMessage{Type: TypeOrderPlaced, OrderID: orderID, Pair: pair, Side: side, Price: price, Volume: volume}
}

// NewOrderFilled builds an OrderFilled outbox message from a deal.
func NewOrderFilled(pair string, deal domain.Deal) OutboxMessage {
	return OutboxMessage{
		Type:       TypeOrderFilled,
		Pair:       pair,
		MakerOrder: deal.MakerOrder,
		TakerOrder: deal.TakerOrder,
		Volume:     deal.Volume,
	}
}

// NewOrderCancelled builds an OrderCancelled outbox message.
func NewOrderCancelled(pair string, orderID uuid.UUID) OutboxMessage {
	return OutboxMessage{Type: TypeOrderCancelled, Pair: pair, OrderID: orderID}
}

// NewOrderNotFound builds an OrderNotFound outbox message.
func NewOrderNotFound(pair string, orderID uuid.UUID) OutboxMessage {
	return OutboxMessage{Type: TypeOrderNotFound, Pair: pair, OrderID: orderID}
}

type orderWire struct {
	OrderID uuid.UUID `json:"order_id"`
	Side    string    `json:"side"`
	Price   uint64    `json:"price"`
	Volume  uint64    `json:"volume"`
}

func toOrderWire(o domain.Order) orderWire {
	return orderWire{OrderID: o.ID, Side: o.Side.String(), Price: o.Price, Volume: o.Volume}
}

func (w orderWire) toOrder() (domain.Order, error) {
	side, ok := domain.ParseSide(w.Side)
	if !ok {
		return domain.Order{}, fmt.Errorf("protocol: invalid side %q", w.Side)
	}
	return domain.Order{ID: w.OrderID, Side: side, Price: w.Price, Volume: w.Volume}, nil
}

type outboxWire struct {
	Type       OutboxMessageType `json:"type"`
	OrderID    uuid.UUID         `json:"order_id,omitempty"`
	Pair       string            `json:"pair"`
	Side       string            `json:"side,omitempty"`
	Price      uint64            `json:"price,omitempty"`
	Volume     uint64            `json:"volume,omitempty"`
	MakerOrder *orderWire        `json:"maker_order,omitempty"`
	TakerOrder *orderWire        `json:"taker_order,omitempty"`
}

// MarshalJSON encodes the message in its externally-tagged wire form.
func (m OutboxMessage) MarshalJSON() ([]byte, error) {
	w := outboxWire{Type: m.Type, Pair: m.Pair}
	switch m.Type {
	case TypeOrderPlaced:
		w.OrderID = m.OrderID
		w.Side = m.Side.String()
		w.Price = m.Price
		w.Volume = m.Volume
	case TypeOrderFilled:
		maker := toOrderWire(m.MakerOrder)
		taker := toOrderWire(m.TakerOrder)
		w.MakerOrder = &maker
		w.TakerOrder = &taker
		w.Volume = m.Volume
	case TypeOrderCancelled, TypeOrderNotFound:
		w.OrderID = m.OrderID
	default:
		return nil, fmt.Errorf("protocol: unknown outbox message type %q", m.Type)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the externally-tagged wire form.
func (m *OutboxMessage) UnmarshalJSON(data []byte) error {
	var w outboxWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case TypeOrderPlaced:
		side, ok := domain.ParseSide(w.Side)
		if !ok {
			return fmt.Errorf("protocol: invalid side %q", w.Side)
		}
		*m = NewOrderPlaced(w.OrderID, w.Pair, side, w.Price, w.Volume)
	case TypeOrderFilled:
		if w.MakerOrder == nil || w.TakerOrder == nil {
			return fmt.Errorf("protocol: OrderFilled missing maker/taker order")
		}
		maker, err := w.MakerOrder.toOrder()
		if err != nil {
			return err
		}
		taker, err := w.TakerOrder.toOrder()
		if err != nil {
			return err
		}
		*m = OutboxMessage{Type: TypeOrderFilled, Pair: w.Pair, MakerOrder: maker, TakerOrder: taker, Volume: w.Volume}
	case TypeOrderCancelled:
		*m = NewOrderCancelled(w.Pair, w.OrderID)
	case TypeOrderNotFound:
		*m = NewOrderNotFound(w.Pair, w.OrderID)
	default:
		return fmt.Errorf("protocol: unknown outbox message type %q", w.Type)
	}
	return nil
}

// OutboxEnvelope groups every outbox event produced from processing
// one inbox message, keyed by that message's id.
type OutboxEnvelope struct {
	InboxCorrelationID uuid.UUID       `json:"inbox_correlation_id"`
	Messages           []OutboxMessage `json:"messages"`
}
