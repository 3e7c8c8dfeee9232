// Package gateway is the HTTP facade in front of the exchange: it
// validates incoming requests, publishes the corresponding inbox
// message, awaits the matching outbox envelope through the
// correlation registry, and shapes the HTTP response from it.
//
// Grounded on the original rest_api.rs warp stub, generalized to the
// spec's two routes, with the server wiring pattern (net/http.Server
// over http.NewServeMux) taken from the dashboard API server.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"coreex/correlation"
	"coreex/domain"
	"coreex/protocol"
	"coreex/transport"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxRequestBody bounds the size of a request body the gateway will
// read, per the spec's 16 KiB limit.
const maxRequestBody = 16 * 1024

// DefaultAwaitTimeout bounds how long a request waits for its outbox
// envelope before failing with 503 Service Unavailable. There is no
// exchange-side timeout; this is purely gateway policy.
const DefaultAwaitTimeout = 10 * time.Second

// Publisher is the subset of transport.Bus the gateway needs: publish
// an inbox message with a correlation id equal to its own msg_id.
type Publisher interface {
	PublishJSON(ctx context.Context, queue string, correlationID string, v any) error
}

// Gateway serves the place-order and cancel-order HTTP endpoints.
type Gateway struct {
	log       zerolog.Logger
	bus       Publisher
	registry  *correlation.Registry
	awaitWait time.Duration
}

// New creates a Gateway that publishes to bus and awaits replies
// through registry.
func New(bus Publisher, registry *correlation.Registry, log zerolog.Logger) *Gateway {
	return &Gateway{
		log:       log.With().Str("component", "gateway").Logger(),
		bus:       bus,
		registry:  registry,
		awaitWait: DefaultAwaitTimeout,
	}
}

// Handler builds the net/http.Handler serving both endpoints.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/place-order", g.handlePlaceOrder)
	mux.HandleFunc("/cancel-order", g.handleCancelOrder)
	return mux
}

type placeOrderRequest struct {
	Pair   string `json:"pair"`
	Side   string `json:"side"`
	Price  uint64 `json:"price"`
	Volume uint64 `json:"volume"`
}

type dealResponse struct {
	TakerOrder orderResponse `json:"taker_order"`
	MakerOrder orderResponse `json:"maker_order"`
	Volume     uint64        `json:"volume"`
}

type orderResponse struct {
	OrderID uuid.UUID `json:"order_id"`
	Side    string    `json:"side"`
	Price   uint64    `json:"price"`
	Volume  uint64    `json:"volume"`
}

type placeOrderResponse struct {
	OrderID uuid.UUID      `json:"order_id"`
	Deals   []dealResponse `json:"deals"`
}

func (g *Gateway) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	side, ok := domain.ParseSide(req.Side)
	if req.Pair == "" || !ok || req.Price == 0 || req.Volume == 0 {
		writeError(w, http.StatusBadRequest, "invalid place-order request")
		return
	}

	msgID := uuid.New()
	envelope, err := g.roundTrip(r.Context(), protocol.NewPlaceOrder(msgID, req.Pair, side, req.Price, req.Volume), msgID)
	if err != nil {
		g.writeRoundTripError(w, err)
		return
	}

	resp := placeOrderResponse{}
	placed := false
	for _, msg := range envelope.Messages {
		switch msg.Type {
		case protocol.TypeOrderPlaced:
			resp.OrderID = msg.OrderID
			placed = true
		case protocol.TypeOrderFilled:
			resp.Deals = append(resp.Deals, dealResponse{
				TakerOrder: toOrderResponse(msg.TakerOrder),
				MakerOrder: toOrderResponse(msg.MakerOrder),
				Volume:     msg.Volume,
			})
		}
	}
	if !placed {
		writeError(w, http.StatusInternalServerError, "malformed exchange response")
		return
	}
	if resp.Deals == nil {
		resp.Deals = []dealResponse{}
	}

	writeJSON(w, http.StatusOK, resp)
}

func toOrderResponse(o domain.Order) orderResponse {
	return orderResponse{OrderID: o.ID, Side: o.Side.String(), Price: o.Price, Volume: o.Volume}
}

type cancelOrderRequest struct {
	Pair    string    `json:"pair"`
	OrderID uuid.UUID `json:"order_id"`
}

type cancelOrderResponse struct {
	Status string `json:"status"`
}

func (g *Gateway) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req cancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Pair == "" || req.OrderID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "invalid cancel-order request")
		return
	}

	msgID := uuid.New()
	envelope, err := g.roundTrip(r.Context(), protocol.NewCancelOrder(msgID, req.Pair, req.OrderID), msgID)
	if err != nil {
		g.writeRoundTripError(w, err)
		return
	}

	status := ""
	if len(envelope.Messages) == 1 {
		switch envelope.Messages[0].Type {
		case protocol.TypeOrderCancelled:
			status = "OrderCancelled"
		case protocol.TypeOrderNotFound:
			status = "OrderNotFound"
		}
	}
	if status == "" {
		writeError(w, http.StatusInternalServerError, "malformed exchange response")
		return
	}
	writeJSON(w, http.StatusOK, cancelOrderResponse{Status: status})
}

// roundTrip registers a waiter, publishes msg to the inbox queue and
// blocks until the matching envelope arrives or the request's context
// is done.
func (g *Gateway) roundTrip(ctx context.Context, msg protocol.InboxMessage, msgID uuid.UUID) (protocol.OutboxEnvelope, error) {
	waiter := g.registry.WaitFor(msgID)

	if err := g.bus.PublishJSON(ctx, transport.InboxQueue, msgID.String(), msg); err != nil {
		waiter.Cancel()
		return protocol.OutboxEnvelope{}, fmt.Errorf("publish inbox message: %w", err)
	}

	awaitCtx, cancel := context.WithTimeout(ctx, g.awaitWait)
	defer cancel()
	return waiter.Await(awaitCtx)
}

func (g *Gateway) writeRoundTripError(w http.ResponseWriter, err error) {
	g.log.Error().Err(err).Msg("round trip failed")
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		writeError(w, http.StatusServiceUnavailable, "timed out waiting for exchange response")
		return
	}
	writeError(w, http.StatusServiceUnavailable, "failed to submit command")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
