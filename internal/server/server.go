// Package server implements a lightweight local stand-in for the Audit
// Trail & Task Management backend. It serves the same REST surface the
// trail client consumes, backed by SQLite, and exists for development
// and end-to-end testing of the CLI.
package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/me/trailctl/internal/store"
	"github.com/me/trailctl/pkg/model"
)

// DefaultTokenTTL is how long issued bearer tokens stay valid.
const DefaultTokenTTL = 24 * time.Hour

// Server is the stand-in REST API server.
type Server struct {
	router   chi.Router
	logger   *slog.Logger
	store    store.Store
	tokenTTL time.Duration
}

// Option configures optional Server settings.
type Option func(*Server)

// WithTokenTTL overrides the bearer token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.tokenTTL = ttl
	}
}

// New creates a Server with all routes registered.
func New(st store.Store, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger.With("component", "server"),
		store:    st,
		tokenTTL: DefaultTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// routes registers the REST surface under /api.
func (s *Server) routes() {
	s.router.Use(requestIDMiddleware)
	s.router.Use(loggingMiddleware(s.logger))

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Everything below requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/me", s.handleCurrentUser)

			r.Get("/tasks", s.handleListTasks)
			r.Post("/tasks", s.handleCreateTask)
			r.Get("/tasks/{id}", s.handleGetTask)
			r.Put("/tasks/{id}", s.handleUpdateTask)
			r.Delete("/tasks/{id}", s.handleDeleteTask)

			r.Get("/audit/my-history", s.handleMyAuditHistory)
			r.Get("/audit/stats", s.handleAuditStats)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/audit/logs", s.handleAuditLogs)
				r.Get("/users", s.handleListUsers)
			})
		})
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// parsePage reads 1-based pagination query parameters, applying the
// endpoint's default page size and a hard cap of 100.
func parsePage(r *http.Request, defaultSize int) model.Page {
	page := model.Page{Page: 1, PageSize: defaultSize}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 {
		page.PageSize = v
	}
	if page.PageSize > 100 {
		page.PageSize = 100
	}
	return page
}
