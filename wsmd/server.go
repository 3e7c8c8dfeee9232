package wsmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// Server listens for WebSocket connections and feeds them from a Hub
// fed by the outbox queue.
type Server struct {
	hub    *Hub
	server *http.Server
	log    zerolog.Logger
}

// NewServer builds a Server listening on addr, serving the hub at /.
func NewServer(addr string, hub *Hub, log zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/", hub)
	return &Server{
		hub:    hub,
		server: &http.Server{Addr: addr, Handler: mux},
		log:    log.With().Str("component", "ws-md-server").Logger(),
	}
}

// ListenAndServe blocks serving connections until the server is
// stopped or fails.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("ws market data api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("wsmd: serve: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
