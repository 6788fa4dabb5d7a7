package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/migratekit/intent-reconciler/internal/models"
)

// PutWorkload registers a workload batch, replacing any previous batch
// under the same name. Record order is import order.
func (s *Server) PutWorkload(w http.ResponseWriter, r *http.Request) {
	var wl models.Workload
	if err := json.NewDecoder(r.Body).Decode(&wl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if wl.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(wl.Records) == 0 {
		writeError(w, http.StatusBadRequest, "at least one source record is required")
		return
	}
	seen := make(map[string]bool)
	for _, rec := range wl.Records {
		if rec.SourceID == "" {
			writeError(w, http.StatusBadRequest, "every record needs a source_id")
			return
		}
		if seen[rec.SourceID] {
			writeError(w, http.StatusBadRequest, "duplicate source_id: "+rec.SourceID)
			return
		}
		seen[rec.SourceID] = true
	}
	s.Workloads.Put(&wl)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"name":    wl.Name,
		"records": len(wl.Records),
	})
}

func (s *Server) ListWorkloads(w http.ResponseWriter, r *http.Request) {
	workloads := s.Workloads.List()
	out := make([]map[string]interface{}, 0, len(workloads))
	for _, wl := range workloads {
		out = append(out, map[string]interface{}{
			"name":    wl.Name,
			"records": len(wl.Records),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetWorkload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	wl := s.Workloads.Get(name)
	if wl == nil {
		writeError(w, http.StatusNotFound, "workload not found")
		return
	}
	writeJSON(w, http.StatusOK, wl)
}

func (s *Server) DeleteWorkload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !s.Workloads.Delete(name) {
		writeError(w, http.StatusNotFound, "workload not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
