package protocol

import (
	"encoding/json"
	"testing"

	"coreex/domain"

	"github.com/google/uuid"
)

func TestInboxMessage_RoundTrip(t *testing.T) {
	cases := []InboxMessage{
		NewPlaceOrder(uuid.New(), "BTC-USD", domain.Buy, 4900, 20),
		NewPlaceOrder(uuid.New(), "ETH-USD", domain.Sell, 3200, 5),
		NewCancelOrder(uuid.New(), "BTC-USD", uuid.New()),
	}
	for _, want := range cases {
		data, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshal %+v: %v", want, err)
		}
		var got InboxMessage
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if got != want {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestOutboxMessage_RoundTrip(t *testing.T) {
	maker := domain.Order{ID: uuid.New(), Side: domain.Sell, Price: 4500, Volume: 7}
	taker := domain.Order{ID: uuid.New(), Side: domain.Buy, Price: 4900, Volume: 20}

	cases := []OutboxMessage{
		NewOrderPlaced(uuid.New(), "BTC-USD", domain.Buy, 4900, 20),
		NewOrderFilled("BTC-USD", domain.Deal{TakerOrder: taker, MakerOrder: maker, Volume: 7}),
		NewOrderCancelled("BTC-USD", uuid.New()),
		NewOrderNotFound("BTC-USD", uuid.New()),
	}
	for _, want := range cases {
		data, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshal %+v: %v", want, err)
		}
		var got OutboxMessage
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if got != want {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestOutboxEnvelope_RoundTrip(t *testing.T) {
	want := OutboxEnvelope{
		InboxCorrelationID: uuid.New(),
		Messages: []OutboxMessage{
			NewOrderPlaced(uuid.New(), "BTC-USD", domain.Buy, 4900, 20),
			NewOrderCancelled("BTC-USD", uuid.New()),
		},
	}
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got OutboxEnvelope
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.InboxCorrelationID != want.InboxCorrelationID || len(got.Messages) != len(want.Messages) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
	for i := range want.Messages {
		if got.Messages[i] != want.Messages[i] {
			t.Errorf("message[%d] mismatch: got %+v, want %+v", i, got.Messages[i], want.Messages[i])
		}
	}
}

func TestInboxMessage_UnmarshalRejectsUnknownType(t *testing.T) {
	var m InboxMessage
	if err := json.Unmarshal([]byte(`{"type":"Bogus","msg_id":"`+uuid.New().String()+`","pair":"BTC-USD"}`), &m); err == nil {
		t.Fatalf("expected error for unknown inbox message type")
	}
}

func TestInboxMessage_WireShape(t *testing.T) {
	msg := NewPlaceOrder(uuid.New(), "BTC-USD", domain.Buy, 4900, 20)
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["type"] != "PlaceOrder" {
		t.Errorf(`type = %v, want "PlaceOrder"`, raw["type"])
	}
	if raw["side"] != "buy" {
		t.Errorf(`side = %v, want "buy"`, raw["side"])
	}
}
