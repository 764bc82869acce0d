package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/jobbind/internal/binding"
	"github.com/me/jobbind/internal/config"
)

// maxBodyBytes bounds job documents accepted over HTTP.
const maxBodyBytes = 10 << 20

// Server is the jobbind REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.Config
	startTime time.Time
	binder    *binding.Service
}

// New creates a new Server with all routes registered.
func New(cfg config.Config, binder *binding.Service, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		binder:    binder,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)

		r.Post("/bind", s.handleBind)
		r.Post("/infer", s.handleInfer)

		r.Route("/passes", func(r chi.Router) {
			r.Get("/", s.handleListPasses)
			r.Get("/{id}", s.handleGetPass)
		})
	})
}
