// Package server exposes read-only snapshots of the pipeline outputs and a
// trigger endpoint for background recomputation.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/Nathan-Omenge/energymap-ai/internal/config"
	"github.com/Nathan-Omenge/energymap-ai/internal/runner"
)

// Server serves the latest persisted datasets and the job status record.
type Server struct {
	cfg     *config.Config
	runner  *runner.Runner
	tracker *runner.Tracker
}

// New creates a server over the given runner and job tracker.
func New(cfg *config.Config, r *runner.Runner, tracker *runner.Tracker) *Server {
	return &Server{cfg: cfg, runner: r, tracker: tracker}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/clusters", s.handleClusters)
	r.Get("/forecasts", s.handleForecasts)
	r.Get("/scenarios", s.handleScenarios)
	r.Get("/summary", s.handleSummary)
	r.Get("/status", s.handleStatus)
	r.Post("/clusters/recalculate", s.handleRecalculate)

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
