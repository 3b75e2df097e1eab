package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maksimkurb/hostsfilter/internal/log"
	"github.com/maksimkurb/hostsfilter/internal/service"
)

// Server represents the API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	svc        *service.MergeService
}

// NewServer creates a new API server
func NewServer(svc *service.MergeService, bindAddr string) *Server {
	s := &Server{
		svc:    svc,
		router: chi.NewRouter(),
	}

	s.router.Use(Recovery)
	s.router.Use(Logger)
	s.router.Use(JSONContentType)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:    bindAddr,
		Handler: s.router,
		// Apply fetches and writes under the handler; keep generous timeouts.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/sources", func(r chi.Router) {
			r.Get("/", s.handleSourcesList)
			r.Put("/{source_name}", s.handleSourceUpdate)
		})

		r.Post("/fetch", s.handleFetch)
		r.Get("/preview", s.handlePreview)
		r.Get("/diff", s.handleDiff)
		r.Post("/apply", s.handleApply)
		r.Get("/status", s.handleStatus)
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// Start starts the API server
func (s *Server) Start() error {
	log.Infof("[API] Starting server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop gracefully stops the API server
func (s *Server) Stop(ctx context.Context) error {
	log.Infof("[API] Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the underlying router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
