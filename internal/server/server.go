// Package server exposes a small debug HTTP surface (health, Prometheus
// metrics, and the last solve's status) alongside the batch CLI, grounded
// on the teacher's tools/cmd/server/main.go router wiring and
// internal/api/health.go handler style.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/airtime/gridplanner/internal/materialize"
)

// LastRun holds the most recent solve's summary, read by /status.
type LastRun struct {
	mu       sync.RWMutex
	schedule *materialize.Schedule
	runAt    time.Time
}

// Set records a completed solve.
func (l *LastRun) Set(schedule materialize.Schedule) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.schedule = &schedule
	l.runAt = time.Now()
}

func (l *LastRun) snapshot() (*materialize.Schedule, time.Time) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.schedule, l.runAt
}

// Server serves the debug HTTP endpoints.
type Server struct {
	Logger  *zap.Logger
	LastRun *LastRun
}

// NewServer builds a Server with an empty LastRun.
func NewServer(logger *zap.Logger) *Server {
	return &Server{Logger: logger, LastRun: &LastRun{}}
}

// Router builds the mux.Router exposing /healthz, /metrics, and /status.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.HealthHandler).Methods("GET")
	r.HandleFunc("/status", s.StatusHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// HealthHandler responds with a simple liveness check.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// statusResponse is the JSON body of /status.
type statusResponse struct {
	HasRun    bool      `json:"has_run"`
	RunAt     time.Time `json:"run_at,omitempty"`
	Solver    string    `json:"solver,omitempty"`
	Status    string    `json:"status,omitempty"`
	Objective int       `json:"objective,omitempty"`
	WeekStart string    `json:"week_start,omitempty"`
}

// StatusHandler reports the outcome of the most recent solve, if any.
func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	schedule, runAt := s.LastRun.snapshot()
	resp := statusResponse{HasRun: schedule != nil}
	if schedule != nil {
		resp.RunAt = runAt
		resp.Solver = schedule.Meta.Solver
		resp.Status = schedule.Meta.Status
		resp.Objective = schedule.Meta.Objective
		resp.WeekStart = schedule.Meta.WeekStart
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.Logger.Error("status handler: encode response", zap.Error(err))
	}
}

// Serve starts listening on addr with sane timeouts, in the style of the
// teacher's tools/cmd/server/main.go http.Server setup.
func (s *Server) Serve(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.Logger.Info("debug server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}
