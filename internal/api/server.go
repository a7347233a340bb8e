// Package api is the read-only HTTP surface over a completed planning run:
// the latest solution, its validation issues, its cost breakdown, and the
// persisted plan history.
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/planengine/planengine/internal/app/planner"
	"github.com/planengine/planengine/internal/infra/sqlite"
	"github.com/planengine/planengine/internal/planning/validate"
)

// Server is the planengine HTTP API server.
type Server struct {
	db             *sqlite.DB
	metricsEnabled bool

	mu     sync.RWMutex
	latest *planner.Result
}

// NewServer creates a new API server backed by a persistence layer. db may
// be nil when only the in-memory latest result needs to be served (e.g. in
// tests).
func NewServer(db *sqlite.DB) *Server {
	return &Server{db: db}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetLatest records the most recently completed planning run, updating the
// Prometheus gauges EnableMetrics exposes.
func (s *Server) SetLatest(res planner.Result) {
	s.mu.Lock()
	s.latest = &res
	s.mu.Unlock()

	solveDurationSeconds.Set(res.Solution.SolveDuration.Seconds())
	solveObjectiveValue.Set(res.Solution.ObjectiveValue)
	solveVariableCount.Set(float64(res.Solution.VariableCount))
	solveConstraintCount.Set(float64(res.Solution.ConstraintCount))

	counts := map[validate.Severity]int{}
	for _, issue := range res.Validation.Issues {
		counts[issue.Severity]++
	}
	for _, sev := range []validate.Severity{validate.Info, validate.Warning, validate.Error, validate.Critical} {
		validationIssueCount.WithLabelValues(string(sev)).Set(float64(counts[sev]))
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/solution", s.handleSolution)
	r.Get("/issues", s.handleIssues)
	r.Get("/cost-breakdown", s.handleCostBreakdown)
	r.Get("/plans", s.handleListPlans)
	r.Get("/plans/{id}", s.handleGetPlan)

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleSolution(w http.ResponseWriter, r *http.Request) {
	res, ok := s.latestResult()
	if !ok {
		writeError(w, http.StatusNotFound, "no completed solve yet")
		return
	}
	writeJSON(w, http.StatusOK, res.Solution)
}

func (s *Server) handleIssues(w http.ResponseWriter, r *http.Request) {
	res, ok := s.latestResult()
	if !ok {
		writeError(w, http.StatusNotFound, "no completed solve yet")
		return
	}
	writeJSON(w, http.StatusOK, res.Validation.Issues)
}

func (s *Server) handleCostBreakdown(w http.ResponseWriter, r *http.Request) {
	res, ok := s.latestResult()
	if !ok {
		writeError(w, http.StatusNotFound, "no completed solve yet")
		return
	}
	writeJSON(w, http.StatusOK, res.Costs)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "plan history is not configured")
		return
	}
	limit := 50
	plans, err := s.db.ListPlans(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "plan history is not configured")
		return
	}
	id := chi.URLParam(r, "id")

	summary, err := s.db.GetPlan(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "plan not found: "+id)
		return
	}
	production, err := s.db.GetPlanProduction(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	shipments, err := s.db.GetPlanShipments(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	issues, err := s.db.GetPlanIssues(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"plan":       summary,
		"production": production,
		"shipments":  shipments,
		"issues":     issues,
	})
}

func (s *Server) latestResult() (planner.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return planner.Result{}, false
	}
	return *s.latest, true
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
