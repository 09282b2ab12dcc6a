package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/argusone/argus-server/internal/auth"
	"github.com/argusone/argus-server/internal/config"
	"github.com/argusone/argus-server/internal/events"
	"github.com/argusone/argus-server/internal/storage"
)

// Server represents the REST API server
type Server struct {
	config    *config.Config
	store     storage.Store
	jwt       *auth.JWTManager
	limiter   *auth.SlidingWindow
	publisher *events.Publisher
	router    chi.Router
	server    *http.Server
}

// NewServer creates a new REST API server. limiter may be nil, in which
// case rate limiting degrades to advisory headers; publisher may be nil
// when NATS is not configured.
func NewServer(cfg *config.Config, store storage.Store, limiter *auth.SlidingWindow, publisher *events.Publisher) *Server {
	s := &Server{
		config:    cfg,
		store:     store,
		jwt:       auth.NewJWTManager(&cfg.JWT),
		limiter:   limiter,
		publisher: publisher,
		router:    chi.NewRouter(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Router exposes the configured router, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-License-Key", "X-Hub-Serial"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Tier"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Route("/api/v1", func(r chi.Router) {
		s.setupAPIRoutes(r)
	})
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	s.server.Addr = addr
	log.Info().Str("addr", addr).Msg("Starting REST API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
