// Package api exposes the grading and schedule engines over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/p-n-ai/pai-records/internal/grading"
	"github.com/p-n-ai/pai-records/internal/navigation"
	"github.com/p-n-ai/pai-records/internal/schedule"
	"github.com/p-n-ai/pai-records/internal/source"
)

const (
	maxBodyBytes = 1 << 20
	checkTimeout = 2 * time.Second
)

// Checker is a dependency probed by the readiness endpoint.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

type namedCheck struct {
	name    string
	checker Checker
}

// Server holds the handlers' dependencies.
type Server struct {
	source source.Source
	agg    *grading.Aggregator
	nav    *navigation.Navigator
	checks []namedCheck
}

// NewServer creates the API server.
func NewServer(src source.Source, agg *grading.Aggregator, nav *navigation.Navigator) *Server {
	return &Server{source: src, agg: agg, nav: nav}
}

// AddCheck registers a dependency for /readyz.
func (s *Server) AddCheck(name string, c Checker) {
	s.checks = append(s.checks, namedCheck{name: name, checker: c})
}

func (s *Server) resolver() *schedule.Resolver {
	return s.nav.Resolver()
}

// Register adds every route to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /v1/grades", s.handleGrades)
	mux.HandleFunc("POST /v1/grades/summary", s.handleGradesSummary)
	mux.HandleFunc("GET /v1/grades/completeness", s.handleCompleteness)
	mux.HandleFunc("GET /v1/grades/export", s.handleExport)
	mux.HandleFunc("GET /v1/cycles", s.handleCycles)

	mux.HandleFunc("GET /v1/schedule/week", s.handleWeek)
	mux.HandleFunc("GET /v1/schedule/day", s.handleDay)
	mux.HandleFunc("GET /v1/schedule/ws", s.handleWeekSocket)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	for _, c := range s.checks {
		if err := c.checker.HealthCheck(ctx); err != nil {
			slog.Warn("readiness check failed", "dependency", c.name, "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":     "unavailable",
				"dependency": c.name,
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
