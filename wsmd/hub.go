// Package wsmd is the read-only WebSocket market-data fan-out: it
// subscribes to the outbox queue and rebroadcasts every business
// event verbatim to every connected client. It never acks through the
// correlation registry — it is a passive observer, not a participant
// in the request/response rendezvous — so it acks every outbox
// delivery unconditionally once broadcast.
//
// Connection bookkeeping is grounded on the original ws_md_api.rs
// peer map and accept loop; the hub/client broadcast plumbing is
// grounded on the dashboard's Hub/Client pair, adapted to publish raw
// outbox payloads instead of dashboard snapshots.
package wsmd

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	broadcastDepth = 256
)

// Hub owns the set of connected market-data clients and fans out
// outbox payloads to all of them.
type Hub struct {
	log        zerolog.Logger
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub. Run must be called, typically in its
// own goroutine, before any client can be served.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:        log.With().Str("component", "ws-md-hub").Logger(),
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, broadcastDepth),
		upgrader:   websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}
}

// Run drives client registration and broadcast until stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.log.Info().Int("clients", len(h.clients)).Msg("client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.log.Info().Int("clients", len(h.clients)).Msg("client disconnected")

		case payload := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- payload:
				default:
					h.log.Warn().Msg("client send buffer full, dropping connection")
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.RUnlock()

		case <-stop:
			return
		}
	}
}

// Broadcast fans payload out to every connected client. Delivery is
// best-effort: a client that cannot keep up is disconnected rather
// than allowed to block the hub.
func (h *Hub) Broadcast(payload []byte) {
	select {
	case h.broadcast <- payload:
	default:
		h.log.Warn().Msg("broadcast channel full, dropping outbox payload")
	}
}

// ServeHTTP upgrades the connection to a WebSocket and starts its
// read/write pumps. The market data feed is write-only from the
// server's perspective: any client message is read and discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, broadcastDepth)}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
