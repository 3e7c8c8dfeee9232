// Package transport connects the exchange, gateway and market-data
// fan-out to the AMQP message bus: it declares the inbox/outbox
// queues, publishes envelopes with a correlation id, and consumes
// deliveries to completion before acking.
//
// Grounded on the original core/outbox/transport.rs split (lapin over
// a deadpool_lapin connection pool), translated to the maintained Go
// successor of streadway/amqp.
package transport

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	// InboxQueue is the queue the exchange consumes commands from.
	InboxQueue = "inbox"
	// OutboxQueue is the queue the exchange publishes business events
	// to, and the gateway and market-data fan-out consume from.
	OutboxQueue = "outbox"

	// DefaultAddr is the address of a local RabbitMQ. Nothing in this
	// package reads it; config.Load falls back to config.DefaultAMQPAddr,
	// which holds the same value, when AMQP_ADDR is unset.
	DefaultAddr = "amqp://127.0.0.1:5672/%2f"
)

// Bus is a durable connection to the message broker with a single
// channel, which Publish and Consume share; there is no separate
// channel per publishing or consuming goroutine.
type Bus struct {
	log  zerolog.Logger
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to addr and declares both queues with default,
// durable parameters.
func Dial(addr string, log zerolog.Logger) (*Bus, error) {
	conn, err := amqp.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport: open channel: %w", err)
	}

	for _, name := range []string{InboxQueue, OutboxQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("transport: declare queue %q: %w", name, err)
		}
	}

	return &Bus{log: log.With().Str("component", "transport").Logger(), conn: conn, ch: ch}, nil
}

// Close tears down the channel and connection.
func (b *Bus) Close() error {
	if err := b.ch.Close(); err != nil {
		b.conn.Close()
		return err
	}
	return b.conn.Close()
}

// Publish sends payload to queue on the default exchange, with
// correlationID carried in the broker's correlation-id property. The
// envelope body remains authoritative; the header is a convenience
// for broker-side routing and tracing.
func (b *Bus) Publish(ctx context.Context, queue string, correlationID string, payload []byte) error {
	return b.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: correlationID,
		Body:          payload,
	})
}

// PublishJSON marshals v and publishes it to queue with correlationID.
func (b *Bus) PublishJSON(ctx context.Context, queue string, correlationID string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("transport: marshal: %w", err)
	}
	return b.Publish(ctx, queue, correlationID, payload)
}

// Handler processes one delivery's decoded payload. Returning an
// error leaves the delivery un-acked: the broker redelivers it, at
// least once, to this or another consumer of the same queue.
type Handler func(ctx context.Context, payload []byte) error

// Consume runs handler over every delivery on queue under
// consumerName, acking only after handler returns nil. It blocks
// until ctx is cancelled or the underlying delivery channel closes,
// at which point it returns the reason.
func (b *Bus) Consume(ctx context.Context, queue, consumerName string, handler Handler) error {
	deliveries, err := b.ch.ConsumeWithContext(ctx, queue, consumerName, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("transport: consume %q: %w", queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("transport: delivery channel for %q closed", queue)
			}
			if err := handler(ctx, delivery.Body); err != nil {
				b.log.Error().Err(err).Str("queue", queue).Msg("delivery handler failed, leaving un-acked")
				continue
			}
			if err := delivery.Ack(false); err != nil {
				b.log.Error().Err(err).Str("queue", queue).Msg("ack failed")
			}
		}
	}
}
