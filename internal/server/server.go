// Package server exposes verification over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/txverify/internal/core/domain"
	"github.com/vietddude/txverify/internal/infra/rpc"
)

// Verifier runs a single verification.
type Verifier interface {
	Verify(ctx context.Context, req domain.VerificationRequest) (*domain.VerificationResult, error)
}

// ChainLister lists supported chains.
type ChainLister interface {
	List() []domain.ChainProfile
}

// HealthReporter reports provider health per chain.
type HealthReporter interface {
	Health() map[domain.ChainID]map[string]rpc.HealthStatus
}

// Config holds server settings.
type Config struct {
	Port int
	// RequestTimeout bounds a single verification.
	RequestTimeout time.Duration
}

// Server provides the HTTP API.
type Server struct {
	verifier Verifier
	chains   ChainLister
	health   HealthReporter
	timeout  time.Duration
	router   *chi.Mux
	server   *http.Server
	log      *slog.Logger
}

// NewServer creates a new server. health may be nil.
func NewServer(cfg Config, verifier Verifier, chains ChainLister, health HealthReporter) *Server {
	s := &Server{
		verifier: verifier,
		chains:   chains,
		health:   health,
		timeout:  cfg.RequestTimeout,
		router:   chi.NewRouter(),
		log:      slog.Default().With("component", "server"),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)

	s.router.Post("/verify", s.handleVerify)
	s.router.Get("/chains", s.handleChains)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/health/detailed", s.handleDetailed)
	s.router.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug("HTTP request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
