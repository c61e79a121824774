// Package api provides the StudyFlow REST API server.
//
// It exposes endpoints for creating conversations, flushing and loading
// message history, listing per-user summaries, and ending a conversation
// with summary generation. The wire format is the models.APIResponse
// envelope consumed by gateway.HTTPGateway.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ConvergioEdu/StudyFlow/internal/gateway"
)

// DefaultAddr is the default listen address for the API server.
const DefaultAddr = ":8080"

// Opts holds configuration for the API server.
type Opts struct {
	Addr string
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server handles the StudyFlow REST endpoints.
type Server struct {
	gw   *gateway.StoreGateway
	addr string
}

// NewServer creates an API server over a store gateway.
func NewServer(gw *gateway.StoreGateway, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{gw: gw, addr: cfg.Addr}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/conversations", s.createConversationHandler)
	mux.HandleFunc("PUT /api/conversations/{id}/messages", s.saveMessagesHandler)
	mux.HandleFunc("GET /api/conversations/{id}/messages", s.getMessagesHandler)
	mux.HandleFunc("POST /api/conversations/{id}/end", s.endConversationHandler)
	mux.HandleFunc("GET /api/summaries", s.listSummariesHandler)
	mux.HandleFunc("GET /api/characters", s.listCharactersHandler)
	mux.HandleFunc("GET /health", s.healthHandler)
	return mux
}

// Run serves the API until the context is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server.Run: API listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("Server.Run: shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
