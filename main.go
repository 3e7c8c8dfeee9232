// Command coreex runs one or more of the exchange's three processes:
// the matching core, the REST gateway, and the WebSocket market-data
// fan-out. Each can run standalone (for independent scaling) or all
// together in a single process for development.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"coreex/config"
	"coreex/correlation"
	"coreex/exchange"
	"coreex/gateway"
	"coreex/transport"
	"coreex/wsmd"

	"github.com/rs/zerolog"
)

const usage = "usage: coreex [core|rest-api|ws-md-api|all]"

func main() {
	mode := "all"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	switch mode {
	case "core", "rest-api", "ws-md-api", "all":
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var run func(context.Context, config.Config, zerolog.Logger) error
	switch mode {
	case "core":
		run = runCore
	case "rest-api":
		run = runRESTAPI
	case "ws-md-api":
		run = runWSMarketDataAPI
	case "all":
		run = runAll
	}

	if err := run(ctx, cfg, log); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("exiting")
	}
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(parsed).With().Timestamp().Logger()
}

// defaultPair is the single trading pair the core registers at
// startup. A production deployment would load its pair set from
// configuration; this engine's scope stops at a fixed pair, matching
// the original core's own BTC_USD bootstrap.
const defaultPair = "BTC-USD"

func runCore(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	bus, err := transport.Dial(cfg.AMQPAddr, log)
	if err != nil {
		return fmt.Errorf("core: %w", err)
	}
	defer bus.Close()

	ex := exchange.New(log)
	if err := ex.AddPair(defaultPair); err != nil {
		return fmt.Errorf("core: %w", err)
	}

	log.Info().Str("pair", defaultPair).Msg("exchange core starting")
	return ex.Run(ctx, bus, "core")
}

func runRESTAPI(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	bus, err := transport.Dial(cfg.AMQPAddr, log)
	if err != nil {
		return fmt.Errorf("rest-api: %w", err)
	}
	defer bus.Close()

	registry := correlation.NewRegistry()
	gw := gateway.New(bus, registry, log)

	errs := make(chan error, 1)
	go func() {
		errs <- gw.ConsumeOutbox(ctx, bus, "rest-api")
	}()

	server := newHTTPServer(cfg.RESTListenAddr, gw.Handler(), log)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return server.Shutdown(context.Background())
	case err := <-errs:
		return err
	}
}

func runWSMarketDataAPI(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	bus, err := transport.Dial(cfg.AMQPAddr, log)
	if err != nil {
		return fmt.Errorf("ws-md-api: %w", err)
	}
	defer bus.Close()

	hub := wsmd.NewHub(log)
	stop := make(chan struct{})
	go hub.Run(stop)
	defer close(stop)

	server := wsmd.NewServer(cfg.WSMarketDataListenAddr, hub, log)

	errs := make(chan error, 2)
	go func() { errs <- hub.ConsumeOutbox(ctx, bus, "ws-md-api") }()
	go func() { errs <- server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return server.Shutdown(context.Background())
	case err := <-errs:
		return err
	}
}

// httpServer is the thin net/http.Server wrapper shared by the REST
// gateway; the WS market-data API has its own in the wsmd package
// since it also owns the hub's lifecycle.
type httpServer struct {
	server *http.Server
	log    zerolog.Logger
}

func newHTTPServer(addr string, handler http.Handler, log zerolog.Logger) *httpServer {
	return &httpServer{server: &http.Server{Addr: addr, Handler: handler}, log: log}
}

func (s *httpServer) ListenAndServe() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("rest api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("rest-api: serve: %w", err)
	}
	return nil
}

func (s *httpServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func runAll(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	errs := make(chan error, 3)
	go func() { errs <- runCore(ctx, cfg, log) }()
	go func() { errs <- runRESTAPI(ctx, cfg, log) }()
	go func() { errs <- runWSMarketDataAPI(ctx, cfg, log) }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errs:
		return err
	}
}
