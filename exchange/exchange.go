// Package exchange dispatches inbox commands to the order book of the
// pair they target and turns the result into an outbox envelope. One
// Exchange instance owns every pair's book; it is driven by a single
// goroutine (see cmd and transport), so no locking is needed around
// the book map or any individual book.
package exchange

import (
	"coreex/domain"
	"coreex/orderbook"
	"coreex/protocol"

	"github.com/rs/zerolog"
)

// Exchange dispatches inbox messages to the per-pair order book and
// produces the outbox envelope describing what happened.
type Exchange struct {
	log   zerolog.Logger
	books map[string]*orderbook.OrderBook
}

// New creates an Exchange with no registered pairs.
func New(log zerolog.Logger) *Exchange {
	return &Exchange{
		log:   log.With().Str("component", "exchange").Logger(),
		books: make(map[string]*orderbook.OrderBook),
	}
}

// AddPair registers a fresh, empty order book under name. It fails
// with ErrPairAlreadyExists if the name is already registered.
func (e *Exchange) AddPair(name string) error {
	if _, exists := e.books[name]; exists {
		return ErrPairAlreadyExists
	}
	e.books[name] = orderbook.New()
	return nil
}

// Pairs returns the registered pair names, in no particular order.
func (e *Exchange) Pairs() []string {
	names := make([]string, 0, len(e.books))
	for name := range e.books {
		names = append(names, name)
	}
	return names
}

// Handle processes one inbox message to completion and returns the
// outbox envelope to publish for it. A message that names an unknown
// pair is logged and produces an empty envelope (no outbox event):
// the pragmatic reading of "pair not found" is that the command was
// silently dropped, not that it failed as a business event.
func (e *Exchange) Handle(msg protocol.InboxMessage) protocol.OutboxEnvelope {
	envelope := protocol.OutboxEnvelope{InboxCorrelationID: msg.MsgID}

	book, ok := e.books[msg.Pair]
	if !ok {
		e.log.Warn().
			Str("msg_id", msg.MsgID.String()).
			Str("pair", msg.Pair).
			Msg("dropping inbox message for unknown pair")
		return envelope
	}

	switch msg.Type {
	case protocol.TypePlaceOrder:
		envelope.Messages = e.handlePlaceOrder(book, msg)
	case protocol.TypeCancelOrder:
		envelope.Messages = e.handleCancelOrder(book, msg)
	default:
		// Well-typed InboxMessage values only ever carry one of the
		// two known types; anything else is an invariant violation
		// in the decoder that let it through.
		panic("exchange: inbox message with unrecognized type reached Handle")
	}

	return envelope
}

func (e *Exchange) handlePlaceOrder(book *orderbook.OrderBook, msg protocol.InboxMessage) []protocol.OutboxMessage {
	order := domain.NewOrder(msg.Side, msg.Price, msg.Volume)
	deals := book.Place(order)

	messages := make([]protocol.OutboxMessage, 0, len(deals)+1)
	messages = append(messages, protocol.NewOrderPlaced(order.ID, msg.Pair, msg.Side, msg.Price, msg.Volume))
	for _, deal := range deals {
		messages = append(messages, protocol.NewOrderFilled(msg.Pair, deal))
	}
	return messages
}

func (e *Exchange) handleCancelOrder(book *orderbook.OrderBook, msg protocol.InboxMessage) []protocol.OutboxMessage {
	if err := book.Cancel(msg.OrderID); err != nil {
		return []protocol.OutboxMessage{protocol.NewOrderNotFound(msg.Pair, msg.OrderID)}
	}
	return []protocol.OutboxMessage{protocol.NewOrderCancelled(msg.Pair, msg.OrderID)}
}
