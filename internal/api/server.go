package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gas-arena/internal/config"
	"gas-arena/internal/game"
)

const shutdownTimeout = 5 * time.Second

// GameInterface is the slice of the simulation the server needs.
type GameInterface interface {
	CommandSink
	StateSource
}

// Server is the public HTTP server: state endpoints plus the websocket hub.
type Server struct {
	addr        string
	router      *chi.Mux
	hub         *Hub
	rateLimiter *IPRateLimiter
}

// NewServer wires the router and hub. Nothing listens until Run.
func NewServer(cfg config.ServerConfig, g GameInterface) *Server {
	s := &Server{
		addr: fmt.Sprintf(":%d", cfg.Port),
		hub: NewHub(g, HubConfig{
			MaxPlayers:     cfg.MaxPlayers,
			SendBuffer:     cfg.SendBuffer,
			MessageRate:    cfg.WSMessageRate,
			MessageBurst:   cfg.WSMessageBurst,
			AllowedOrigins: cfg.AllowedOrigins,
		}),
		rateLimiter: NewIPRateLimiter(RateLimitConfig{
			RequestsPerSecond: cfg.HTTPRateLimit,
			Burst:             cfg.HTTPBurst,
			CleanupInterval:   DefaultRateLimitConfig.CleanupInterval,
		}),
	}
	s.router = NewRouter(RouterConfig{
		State:       g,
		Play:        s.hub,
		RateLimiter: s.rateLimiter,
		CORSOrigins: cfg.AllowedOrigins,
	})
	return s
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🌐 Game server listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("listen %s: %w", s.addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not covered by srv.Shutdown.
	if err := s.hub.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ WebSocket hub shutdown: %v", err)
	}
	err := srv.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Println("🛑 Game server stopped")
	return nil
}

var _ GameInterface = (*game.Game)(nil)
