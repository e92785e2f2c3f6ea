// Package server exposes the application over a JSON HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"findash/internal/logging"
	"findash/internal/service"
)

// Server is the HTTP front of the application.
type Server struct {
	svc  *service.Service
	log  logging.Logger
	http *http.Server
}

// New creates a Server listening on addr.
func New(addr string, svc *service.Service, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Server{svc: svc, log: logger}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /transactions/range", s.handleListTransactions)
	mux.HandleFunc("PATCH /transactions/{id}/category", s.handleSetCategory)
	mux.HandleFunc("POST /transactions/{id}/recategorize", s.handleRecategorize)
	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("GET /accounts", s.handleListAccounts)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /rules", s.handleListRules)
	mux.HandleFunc("POST /rules", s.handleCreateRule)
	mux.HandleFunc("POST /rules/apply", s.handleReapplyRules)
	mux.HandleFunc("GET /dashboard/summary", s.handleDashboardSummary)
	return s.withRequestLog(mux)
}

// ListenAndServe runs the server until it fails or is shut down.
func (s *Server) ListenAndServe() error {
	s.log.Info("HTTP server listening", logging.F("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("HTTP server shutting down")
	return s.http.Shutdown(ctx)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("Request handled",
			logging.F("method", r.Method),
			logging.F("path", r.URL.Path),
			logging.F("duration", time.Since(start).String()))
	})
}
