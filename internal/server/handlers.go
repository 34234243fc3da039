package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nathan-Omenge/energymap-ai/internal/geodata"
	"github.com/Nathan-Omenge/energymap-ai/internal/scenario"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Status())
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	data, count, ok := s.readFeatureCollection(w, s.cfg.Paths.ScoringOutputGeoJSON)
	if !ok {
		return
	}

	meta := map[string]any{
		"record_count": count,
	}
	if st := s.tracker.Status(); st.LastRun != nil {
		meta["generated_at"] = st.LastRun.UTC().Format(time.RFC3339)
	}
	if fileExists(s.cfg.Paths.ScoringOutputCSV) {
		meta["summary_csv"] = s.cfg.Paths.ScoringOutputCSV
	}

	writeJSON(w, http.StatusOK, map[string]any{"meta": meta, "data": data})
}

func (s *Server) handleForecasts(w http.ResponseWriter, r *http.Request) {
	data, count, ok := s.readFeatureCollection(w, s.cfg.Paths.DemandOutputGeoJSON)
	if !ok {
		return
	}

	meta := map[string]any{
		"record_count": count,
	}
	if fileExists(s.cfg.Paths.DemandOutputCSV) {
		meta["csv"] = s.cfg.Paths.DemandOutputCSV
	}

	writeJSON(w, http.StatusOK, map[string]any{"meta": meta, "data": data})
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	if !fileExists(s.cfg.Paths.ScenarioComparisonCSV) {
		writeError(w, http.StatusNotFound, "scenario comparison not generated yet")
		return
	}

	var rows []scenario.ComparisonRow
	if err := geodata.ReadCSV(s.cfg.Paths.ScenarioComparisonCSV, &rows); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	files := []map[string]string{}
	matches, _ := filepath.Glob(filepath.Join(s.cfg.Paths.ScenarioOutputDir, "*.geojson"))
	for _, m := range matches {
		stem := strings.TrimSuffix(filepath.Base(m), ".geojson")
		files = append(files, map[string]string{
			"name": strings.ReplaceAll(stem, "_", " "),
			"path": m,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"comparison": rows, "files": files})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]any{}
	if raw, err := os.ReadFile(s.cfg.Paths.SummaryStatsJSON); err == nil {
		if err := json.Unmarshal(raw, &metrics); err != nil {
			writeError(w, http.StatusInternalServerError, "invalid summary JSON: "+err.Error())
			return
		}
	}

	st := s.tracker.Status()
	if st.LastRun != nil {
		metrics["last_run"] = st.LastRun.UTC().Format(time.RFC3339)
	} else {
		metrics["last_run"] = nil
	}
	metrics["last_status"] = st.LastStatus
	metrics["last_error"] = st.LastError

	writeJSON(w, http.StatusOK, metrics)
}

// recalculateRequest is the body of POST /clusters/recalculate. Custom
// weights are rejected as unsupported; dry_run validates without executing.
type recalculateRequest struct {
	Weights map[string]float64 `json:"weights"`
	DryRun  bool               `json:"dry_run"`
}

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	var req recalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Weights) > 0 {
		writeError(w, http.StatusBadRequest, "custom weights are not supported by the scoring pipeline")
		return
	}

	if req.DryRun {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"message": "dry run successful; no job executed",
		})
		return
	}

	if !s.tracker.TryStart() {
		writeError(w, http.StatusConflict, "a pipeline run is already in progress")
		return
	}

	jobID := uuid.NewString()
	started := time.Now().UTC()

	// The job outlives the request; it must not inherit its cancellation.
	go func() {
		err := s.runner.RunAll(context.Background())
		s.tracker.Finish(started, err)
		if err != nil {
			zap.L().Error("recalculation job failed",
				zap.String("job_id", jobID),
				zap.Error(err),
			)
			return
		}
		zap.L().Info("recalculation job complete", zap.String("job_id", jobID))
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"job_id":  jobID,
		"message": "recalculation job submitted; check /clusters or /status for updates",
	})
}

// readFeatureCollection returns the raw GeoJSON document and its feature
// count, writing the HTTP error itself when the file is missing or invalid.
func (s *Server) readFeatureCollection(w http.ResponseWriter, path string) (json.RawMessage, int, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found: "+path)
		return nil, 0, false
	}

	var fc struct {
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(raw, &fc); err != nil {
		writeError(w, http.StatusInternalServerError, "invalid GeoJSON at "+path+": "+err.Error())
		return nil, 0, false
	}

	return raw, len(fc.Features), true
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
