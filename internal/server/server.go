// Package server exposes a designlib.Catalog over HTTP with a websocket
// stream of catalog changes.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/designlib"
	"github.com/agentstation/designlib/internal/server/events"
	"github.com/agentstation/designlib/internal/server/events/adapters"
	ws "github.com/agentstation/designlib/internal/server/websocket"
	"github.com/agentstation/designlib/pkg/constants"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	catalog   designlib.Catalog
	broker    *events.Broker
	wsHub     *ws.Hub
	upgrader  websocket.Upgrader
	logger    *zerolog.Logger
	config    Config
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// New creates a server for catalog and subscribes to its change hooks.
func New(catalog designlib.Catalog, cfg Config, logger *zerolog.Logger) *Server {
	defaults := DefaultConfig()
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = defaults.PathPrefix
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaults.ReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = defaults.IdleTimeout
	}

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		catalog: catalog,
		broker:  broker,
		wsHub:   wsHub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(cfg.CORSOrigins),
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	s.connectHooks()
	return s
}

// checkOrigin allows same-origin requests plus the configured CORS origins.
func checkOrigin(origins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if o == "*" || o == origin {
				return true
			}
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}

// connectHooks publishes catalog changes to the broker.
func (s *Server) connectHooks() {
	s.catalog.OnFileAdded(func(rec designlib.FileRecord) {
		s.broker.Publish(events.FileAdded, rec)
	})
	s.catalog.OnFileRemoved(func(rec designlib.FileRecord) {
		s.broker.Publish(events.FileRemoved, rec)
	})
}

// Start runs the broker and websocket hub until Shutdown.
func (s *Server) Start() {
	go s.broker.Run(s.ctx)
	go s.wsHub.Run(s.ctx)
	s.logger.Debug().Msg("background services started")
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Addr returns host:port.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: constants.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	s.Start()
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Str("prefix", s.config.PathPrefix).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = s.Shutdown(context.Background())
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn().Err(err).Msg("http server shutdown incomplete")
	}
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops the background services.
func (s *Server) Shutdown(_ context.Context) error {
	s.cancel()
	s.logger.Info().Msg("server stopped")
	return nil
}

// WSHub returns the websocket hub.
func (s *Server) WSHub() *ws.Hub { return s.wsHub }

// Broker returns the event broker.
func (s *Server) Broker() *events.Broker { return s.broker }
