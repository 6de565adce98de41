// Package server hosts the webhook endpoint and the live event feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soyeahso/macrolog/internal/channel/twilio"
	"github.com/soyeahso/macrolog/internal/config"
	"github.com/soyeahso/macrolog/internal/domain"
	"github.com/soyeahso/macrolog/internal/logging"
	"github.com/soyeahso/macrolog/internal/version"
)

// A handler panic must still answer the webhook, otherwise the sender
// sees silence.
const recoveredReply = "Something went wrong. Please try again."

// InboundHandler processes one inbound message and returns the reply
// body for the synchronous webhook response.
type InboundHandler interface {
	Handle(ctx context.Context, msg domain.InboundMessage) string
}

// Server is the macrolog HTTP + WebSocket server.
type Server struct {
	cfg      config.ServerConfig
	handler  InboundHandler
	hub      *EventHub
	log      *logging.Logger
	upgrader websocket.Upgrader

	httpServer *http.Server
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithEventHub attaches a live event feed served at /ws.
func WithEventHub(hub *EventHub) ServerOption {
	return func(s *Server) { s.hub = hub }
}

// New creates a server for the given inbound handler.
func New(cfg config.ServerConfig, handler InboundHandler, log *logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		cfg:     cfg,
		handler: handler,
		log:     log.Sub("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// routes builds the HTTP mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// Start begins listening. It blocks until the context is cancelled or
// an error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg)

	handler := withMiddleware(s.routes(), s.log)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("version", version.Version).
		Msg("server ready")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if s.hub != nil {
			s.hub.CloseAll()
		}
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the server's listen address, or empty string if not
// started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.ServerConfig) string {
	switch cfg.Bind {
	case "loopback":
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	case "all":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	default:
		return fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
	}
}

// handleWebhook processes an inbound Twilio event and answers with
// TwiML. Handler panics are converted into a generic failure reply so
// the webhook never dangles.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error().Any("panic", rec).Msg("webhook handler panicked")
			twilio.WriteTwiML(w, recoveredReply)
		}
	}()

	msg, err := twilio.ParseInbound(r)
	if err != nil {
		s.log.Warn().Err(err).Msg("rejecting malformed webhook")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	reply := s.handler.Handle(r.Context(), msg)
	twilio.WriteTwiML(w, reply)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","version":%q}`, version.Version)
}

// handleWS upgrades to a WebSocket and streams the event feed until the
// client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "event feed disabled", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := s.hub.add(conn)
	defer s.hub.remove(client.connID)

	// The feed is one-way; the read loop only detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Str("connId", client.connID).Msg("feed read ended")
			}
			return
		}
	}
}
