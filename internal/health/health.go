// Package health exposes liveness and readiness endpoints for container
// orchestration probes.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/m3rciful/audiobot/core/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Checker verifies one dependency for the readiness probe.
type Checker func(ctx context.Context) error

// Server serves /healthz and /readyz over plain HTTP.
type Server struct {
	srv      *http.Server
	checkers map[string]Checker
}

// New builds the server. Named checkers gate /readyz; /healthz always
// answers 200 while the process is up.
func New(listen string, checkers map[string]Checker) *Server {
	s := &Server{checkers: checkers}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	s.srv = &http.Server{
		Addr:              listen,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	logger.Info(logger.Background(), "health", "listen",
		slog.String("listen", s.srv.Addr),
	)
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	result := make(map[string]string, len(s.checkers))
	ready := true
	for name, check := range s.checkers {
		if err := check(ctx); err != nil {
			result[name] = err.Error()
			ready = false
			continue
		}
		result[name] = "ok"
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"ready":  ready,
		"checks": result,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
