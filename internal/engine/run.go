package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/migratekit/intent-reconciler/internal/models"
)

// Logger receives human-readable progress lines during a run. It must be
// safe for concurrent use; workloads are processed in parallel.
type Logger func(string)

func nopLogger(string) {}

// prepared is one workload's records after canonicalization and schema
// validation: the surviving records plus everything reportable.
type prepared struct {
	valid    []canonicalRecord
	excluded []string
	errors   []models.ValidationError
	unmapped []models.UnmappedField
}

// prepare canonicalizes and validates a workload's records. A record that
// fails validation is excluded with a warning; its unmapped fields are
// still reported. One malformed source never aborts the workload.
func (e *Engine) prepare(w *models.Workload, logf Logger) prepared {
	var p prepared
	for i, rec := range w.Records {
		cr, unmapped := e.canonicalize(rec, i)
		p.unmapped = append(p.unmapped, unmapped...)
		for _, um := range unmapped {
			logf(fmt.Sprintf("  %s: field %q has no canonical mapping, needs review", rec.SourceID, um.Name))
		}
		if errs := e.validateRecord(cr); len(errs) > 0 {
			p.errors = append(p.errors, errs...)
			p.excluded = append(p.excluded, rec.SourceID)
			logf(fmt.Sprintf("  WARNING: excluding %s: %d validation error(s)", rec.SourceID, len(errs)))
			continue
		}
		p.valid = append(p.valid, cr)
	}
	return p
}

// PreviewWorkload runs canonicalize + validate + detect for one workload,
// without producing a Unified Intent.
func (e *Engine) PreviewWorkload(w *models.Workload, logf Logger) WorkloadPreview {
	if logf == nil {
		logf = nopLogger
	}
	logf(fmt.Sprintf("=== Previewing %s (%d sources) ===", w.Name, len(w.Records)))
	p := e.prepare(w, logf)
	groups, keys := groupFields(p.valid)
	findings := e.detect(groups, keys)
	logf(fmt.Sprintf("  %s: %d finding(s), %d unmapped field(s)", w.Name, len(findings), len(p.unmapped)))
	return WorkloadPreview{
		Workload:         w.Name,
		ExcludedSources:  p.excluded,
		ValidationErrors: p.errors,
		Findings:         findings,
		Unmapped:         p.unmapped,
	}
}

// ReconcileWorkload runs the full pipeline for one workload, strictly
// validate -> detect -> merge -> classify -> aggregate.
func (e *Engine) ReconcileWorkload(w *models.Workload, logf Logger) WorkloadResult {
	if logf == nil {
		logf = nopLogger
	}
	logf(fmt.Sprintf("=== Reconciling %s (%d sources) ===", w.Name, len(w.Records)))
	p := e.prepare(w, logf)
	groups, keys := groupFields(p.valid)
	findings := e.detect(groups, keys)
	intent := e.merge(w.Name, p.valid, findings, p.unmapped)
	verdicts := e.classify(intent)
	summary := e.summarize(w.Name, verdicts)

	if intent.NeedsResolution {
		logf(fmt.Sprintf("  %s: %d blocking conflict(s), intent needs resolution", w.Name, len(intent.Unresolved)))
	}
	logf(fmt.Sprintf("  %s: %d field(s) resolved, %d capabilit(ies), label %s", w.Name, len(intent.Fields), len(intent.Capabilities), summary.Label))

	return WorkloadResult{
		Workload:         w.Name,
		ExcludedSources:  p.excluded,
		ValidationErrors: p.errors,
		Findings:         findings,
		Intent:           intent,
		Verdicts:         verdicts,
		Summary:          summary,
	}
}

// Preview dry-runs a set of workloads in parallel. Results are ordered by
// workload name regardless of completion order.
func (e *Engine) Preview(workloads []*models.Workload, logf Logger) *PreviewResult {
	if logf == nil {
		logf = nopLogger
	}
	sorted := sortWorkloads(workloads)
	result := &PreviewResult{Workloads: make([]WorkloadPreview, len(sorted))}
	var wg sync.WaitGroup
	for i, w := range sorted {
		wg.Add(1)
		go func(i int, w *models.Workload) {
			defer wg.Done()
			result.Workloads[i] = e.PreviewWorkload(w, logf)
		}(i, w)
	}
	wg.Wait()
	return result
}

// Run reconciles a set of workloads in parallel. Workloads share nothing,
// so this is a plain fan-out; ordering and determinism are restored by
// sorting results by workload name.
func (e *Engine) Run(workloads []*models.Workload, logf Logger) *RunResult {
	if logf == nil {
		logf = nopLogger
	}
	sorted := sortWorkloads(workloads)
	result := &RunResult{Workloads: make([]WorkloadResult, len(sorted))}
	var wg sync.WaitGroup
	for i, w := range sorted {
		wg.Add(1)
		go func(i int, w *models.Workload) {
			defer wg.Done()
			result.Workloads[i] = e.ReconcileWorkload(w, logf)
		}(i, w)
	}
	wg.Wait()

	summaries := make([]models.WorkloadSummary, len(result.Workloads))
	for i := range result.Workloads {
		summaries[i] = result.Workloads[i].Summary
	}
	result.Portfolio = portfolio(summaries)
	logf(fmt.Sprintf("Run complete: %d workload(s)", len(result.Workloads)))
	return result
}

func sortWorkloads(workloads []*models.Workload) []*models.Workload {
	sorted := make([]*models.Workload, len(workloads))
	copy(sorted, workloads)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted
}
