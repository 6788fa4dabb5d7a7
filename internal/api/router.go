package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/migratekit/intent-reconciler/internal/engine"
	"github.com/migratekit/intent-reconciler/internal/models"
)

// Server holds shared state for all API handlers.
type Server struct {
	Engine    *engine.Engine
	Workloads *models.WorkloadStore
	Jobs      *models.JobStore
	Results   *ResultStore
}

// NewRouter builds the chi router with all API routes.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Workload batches (fed by the extraction collaborator)
		r.Post("/workloads", s.PutWorkload)
		r.Get("/workloads", s.ListWorkloads)
		r.Get("/workloads/{name}", s.GetWorkload)
		r.Delete("/workloads/{name}", s.DeleteWorkload)

		// Reconciliation (async)
		r.Post("/reconcile/preview", s.ReconcilePreviewHandler)
		r.Get("/reconcile/preview/{jobId}", s.GetReconcilePreview)
		r.Post("/reconcile/run", s.ReconcileRunHandler)
		r.Get("/reconcile/run/{jobId}", s.GetReconcileRun)

		// Run outputs for the generation and reporting collaborators
		r.Get("/runs/{jobId}/workloads/{name}/intent", s.GetIntent)
		r.Get("/runs/{jobId}/workloads/{name}/intent/export", s.ExportIntent)
		r.Get("/runs/{jobId}/report", s.GetReport)

		// Jobs
		r.Get("/jobs", s.ListJobs)
		r.Get("/jobs/{id}", s.GetJob)
	})

	// WebSocket (outside /api to avoid JSON content-type assumptions)
	r.Get("/ws/jobs/{id}/logs", s.StreamJobLogs)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
