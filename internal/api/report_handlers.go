package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/migratekit/intent-reconciler/internal/engine"
)

func (s *Server) runResult(w http.ResponseWriter, r *http.Request) (*engine.RunResult, bool) {
	jobID := chi.URLParam(r, "jobId")
	result := s.Results.Run(jobID)
	if result == nil {
		writeError(w, http.StatusNotFound, "run result not found")
		return nil, false
	}
	return result, true
}

// GetIntent serves one workload's Unified Intent and merge ledger, the
// document the generation collaborator consumes. While blocking conflicts
// remain the intent is withheld with 409 so that generation can never
// proceed silently.
func (s *Server) GetIntent(w http.ResponseWriter, r *http.Request) {
	result, ok := s.runResult(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	wr := result.Result(name)
	if wr == nil {
		writeError(w, http.StatusNotFound, "workload not in this run")
		return
	}
	if wr.Intent.NeedsResolution {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"status":               "needs-resolution",
			"message":              "unresolved blocking conflicts; artifact generation must not proceed",
			"unresolved_conflicts": wr.Intent.Unresolved,
		})
		return
	}
	writeJSON(w, http.StatusOK, wr.Intent)
}

// ExportIntent serves the same document as YAML, the persisted shape for
// the audit trail. The needs-resolution refusal applies here too.
func (s *Server) ExportIntent(w http.ResponseWriter, r *http.Request) {
	result, ok := s.runResult(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	wr := result.Result(name)
	if wr == nil {
		writeError(w, http.StatusNotFound, "workload not in this run")
		return
	}
	if wr.Intent.NeedsResolution {
		writeError(w, http.StatusConflict, "unresolved blocking conflicts; intent cannot be exported")
		return
	}
	writeYAML(w, http.StatusOK, wr.Intent)
}

// GetReport serves the full readiness report for the reporting
// collaborator: portfolio and per-workload summaries plus complete
// finding and ledger detail.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	result, ok := s.runResult(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}
