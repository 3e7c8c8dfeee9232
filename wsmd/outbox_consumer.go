package wsmd

import (
	"context"

	"coreex/transport"
)

// Consumer is the subset of transport.Bus needed to drive the
// market-data outbox subscription.
type Consumer interface {
	Consume(ctx context.Context, queue, consumerName string, handler transport.Handler) error
}

// ConsumeOutbox forwards every outbox payload verbatim to the hub.
// Unlike the gateway's consumer this never inspects the envelope: the
// fan-out is a passive, read-only observer of the business event
// stream, not a participant in request/response correlation.
func (h *Hub) ConsumeOutbox(ctx context.Context, consumer Consumer, consumerName string) error {
	return consumer.Consume(ctx, transport.OutboxQueue, consumerName, func(ctx context.Context, payload []byte) error {
		h.Broadcast(payload)
		return nil
	})
}
