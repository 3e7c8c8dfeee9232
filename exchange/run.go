package exchange

import (
	"context"
	"encoding/json"
	"fmt"

	"coreex/protocol"
	"coreex/transport"
)

// Bus is the subset of transport.Bus the exchange dispatch loop
// needs: consume the inbox queue, publish to the outbox queue.
type Bus interface {
	Consume(ctx context.Context, queue, consumerName string, handler transport.Handler) error
	PublishJSON(ctx context.Context, queue string, correlationID string, v any) error
}

// Run consumes the inbox queue to completion, message by message,
// dispatching each to Handle and publishing its envelope to the
// outbox queue before the delivery is acked. This is the entire
// concurrency model: one goroutine, one connection, no locking —
// the loop below never suspends mid-match, so total order within a
// pair is exactly inbox consumption order.
func (e *Exchange) Run(ctx context.Context, bus Bus, consumerName string) error {
	return bus.Consume(ctx, transport.InboxQueue, consumerName, func(ctx context.Context, payload []byte) error {
		var msg protocol.InboxMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			return fmt.Errorf("decode inbox message: %w", err)
		}

		envelope := e.dispatch(msg)
		if len(envelope.Messages) == 0 {
			// Unknown pair: already logged inside Handle, nothing to
			// publish. The delivery is still acked below.
			return nil
		}
		return bus.PublishJSON(ctx, transport.OutboxQueue, msg.MsgID.String(), envelope)
	})
}

// dispatch calls Handle, logging and re-panicking on any invariant
// violation that reaches here as a panic (e.g. the order book's
// by_id/tree disagreement check). These are fatal per the book's own
// contract: corrupted book state must never be matched against
// silently, so the process is expected to die after this log line.
func (e *Exchange) dispatch(msg protocol.InboxMessage) (envelope protocol.OutboxEnvelope) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().
				Interface("panic", r).
				Str("msg_id", msg.MsgID.String()).
				Str("pair", msg.Pair).
				Msg("fatal invariant violation handling inbox message")
			panic(r)
		}
	}()
	return e.Handle(msg)
}
