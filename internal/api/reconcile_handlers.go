package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/migratekit/intent-reconciler/internal/engine"
	"github.com/migratekit/intent-reconciler/internal/models"
)

// ResultStore provides thread-safe storage for finished preview and run
// results, keyed by job ID.
type ResultStore struct {
	mu       sync.RWMutex
	previews map[string]*engine.PreviewResult
	runs     map[string]*engine.RunResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		previews: make(map[string]*engine.PreviewResult),
		runs:     make(map[string]*engine.RunResult),
	}
}

func (rs *ResultStore) StorePreview(jobID string, p *engine.PreviewResult) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.previews[jobID] = p
}

func (rs *ResultStore) Preview(jobID string) *engine.PreviewResult {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.previews[jobID]
}

func (rs *ResultStore) StoreRun(jobID string, r *engine.RunResult) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.runs[jobID] = r
}

func (rs *ResultStore) Run(jobID string) *engine.RunResult {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.runs[jobID]
}

// selectWorkloads resolves a reconcile request's workload names against
// the store. An empty list means every registered workload.
func (s *Server) selectWorkloads(names []string) ([]*models.Workload, string) {
	if len(names) == 0 {
		all := s.Workloads.List()
		if len(all) == 0 {
			return nil, "no workloads registered"
		}
		return all, ""
	}
	out := make([]*models.Workload, 0, len(names))
	for _, name := range names {
		wl := s.Workloads.Get(name)
		if wl == nil {
			return nil, "workload not found: " + name
		}
		out = append(out, wl)
	}
	return out, ""
}

// ReconcilePreviewHandler starts an async dry run: canonicalize, validate,
// and detect conflicts without merging.
func (s *Server) ReconcilePreviewHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Workloads []string `json:"workloads"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	workloads, errMsg := s.selectWorkloads(req.Workloads)
	if errMsg != "" {
		writeError(w, http.StatusNotFound, errMsg)
		return
	}

	job := s.Jobs.Create("reconcile-preview", workloadNames(workloads))

	go func() {
		result := s.Engine.Preview(workloads, job.AppendLog)
		s.Results.StorePreview(job.ID, result)
		job.Complete()
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

// GetReconcilePreview returns the result of a completed preview job.
func (s *Server) GetReconcilePreview(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	job := s.Jobs.Get(jobID)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.CurrentStatus() == "running" {
		writeJSON(w, http.StatusConflict, map[string]string{
			"status":  "running",
			"message": "preview is still in progress",
		})
		return
	}

	result := s.Results.Preview(jobID)
	if result == nil {
		writeError(w, http.StatusNotFound, "preview result not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ReconcileRunHandler starts an async full reconciliation: validate,
// detect, merge, classify, aggregate.
func (s *Server) ReconcileRunHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Workloads []string `json:"workloads"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	workloads, errMsg := s.selectWorkloads(req.Workloads)
	if errMsg != "" {
		writeError(w, http.StatusNotFound, errMsg)
		return
	}

	job := s.Jobs.Create("reconcile-run", workloadNames(workloads))

	go func() {
		result := s.Engine.Run(workloads, job.AppendLog)
		s.Results.StoreRun(job.ID, result)
		job.Complete()
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

// GetReconcileRun returns the result of a completed run job.
func (s *Server) GetReconcileRun(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	job := s.Jobs.Get(jobID)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.CurrentStatus() == "running" {
		writeJSON(w, http.StatusConflict, map[string]string{
			"status":  "running",
			"message": "run is still in progress",
		})
		return
	}

	result := s.Results.Run(jobID)
	if result == nil {
		writeError(w, http.StatusNotFound, "run result not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func workloadNames(workloads []*models.Workload) []string {
	names := make([]string, len(workloads))
	for i, wl := range workloads {
		names[i] = wl.Name
	}
	return names
}
