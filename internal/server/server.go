// Package server exposes a small read-only HTTP surface for a long-running
// process: liveness, the last batch result and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"PipSentinel/internal/scheduler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusSource reports the most recent batch run.
type StatusSource interface {
	LastRun() *scheduler.RunResult
}

type Server struct {
	status   StatusSource
	registry *prometheus.Registry
	started  time.Time
}

func New(status StatusSource, registry *prometheus.Registry) *Server {
	return &Server{status: status, registry: registry, started: time.Now()}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "ok")
	})
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

type statusResponse struct {
	Uptime  string               `json:"uptime"`
	LastRun *scheduler.RunResult `json:"last_run"`
	Failed  bool                 `json:"failed"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Uptime: time.Since(s.started).Round(time.Second).String()}
	if last := s.status.LastRun(); last != nil {
		resp.LastRun = last
		resp.Failed = last.Failed()
	}
	render.JSON(w, r, resp)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown: %v", err)
		}
	}()

	log.Printf("[INFO] status server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
