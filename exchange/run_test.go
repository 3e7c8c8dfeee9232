package exchange

import (
	"context"
	"encoding/json"
	"testing"

	"coreex/domain"
	"coreex/protocol"
	"coreex/transport"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type fakeBus struct {
	deliveries [][]byte
	published  []publishedMessage
}

type publishedMessage struct {
	queue         string
	correlationID string
	envelope      protocol.OutboxEnvelope
}

func (f *fakeBus) Consume(ctx context.Context, queue, consumerName string, handler transport.Handler) error {
	for _, payload := range f.deliveries {
		if err := handler(ctx, payload); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeBus) PublishJSON(ctx context.Context, queue string, correlationID string, v any) error {
	envelope := v.(protocol.OutboxEnvelope)
	f.published = append(f.published, publishedMessage{queue: queue, correlationID: correlationID, envelope: envelope})
	return nil
}

func TestRun_PublishesEnvelopeForPlaceOrder(t *testing.T) {
	ex := New(zerolog.Nop())
	if err := ex.AddPair("BTC-USD"); err != nil {
		t.Fatalf("AddPair: %v", err)
	}

	msg := protocol.NewPlaceOrder(uuid.New(), "BTC-USD", domain.Buy, 4900, 20)
	payload, _ := json.Marshal(msg)
	bus := &fakeBus{deliveries: [][]byte{payload}}

	if err := ex.Run(context.Background(), bus, "core"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(bus.published) != 1 {
		t.Fatalf("published = %+v, want exactly one envelope", bus.published)
	}
	if bus.published[0].envelope.InboxCorrelationID != msg.MsgID {
		t.Errorf("correlation id = %v, want %v", bus.published[0].envelope.InboxCorrelationID, msg.MsgID)
	}
}

func TestRun_UnknownPairPublishesNothing(t *testing.T) {
	ex := New(zerolog.Nop())

	msg := protocol.NewPlaceOrder(uuid.New(), "BTC-USD", domain.Buy, 4900, 20)
	payload, _ := json.Marshal(msg)
	bus := &fakeBus{deliveries: [][]byte{payload}}

	if err := ex.Run(context.Background(), bus, "core"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(bus.published) != 0 {
		t.Errorf("published = %+v, want none for unknown pair", bus.published)
	}
}
