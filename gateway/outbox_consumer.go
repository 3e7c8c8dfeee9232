package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"coreex/protocol"
	"coreex/transport"
)

// Consumer is the subset of transport.Bus needed to drive an outbox
// consume loop.
type Consumer interface {
	Consume(ctx context.Context, queue, consumerName string, handler transport.Handler) error
}

// ConsumeOutbox decodes every outbox delivery and completes the
// waiting request's rendezvous, if one is still registered. A
// correlation miss — no waiter installed, already delivered, or
// already cancelled — is dropped silently and the delivery is still
// acked: it is not a failure, just a reply nobody is listening for
// anymore (the single-gateway deployment this assumes means every
// envelope on this queue was either ours or stale).
func (g *Gateway) ConsumeOutbox(ctx context.Context, consumer Consumer, consumerName string) error {
	return consumer.Consume(ctx, transport.OutboxQueue, consumerName, func(ctx context.Context, payload []byte) error {
		var envelope protocol.OutboxEnvelope
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return fmt.Errorf("decode outbox envelope: %w", err)
		}
		g.registry.Deliver(envelope.InboxCorrelationID, envelope)
		return nil
	})
}
