// Package engine implements the intent reconciliation core: it maps each
// source record's fields onto the canonical vocabulary, validates them,
// detects conflicts between sources, resolves them by per-class merge
// policy into one Unified Intent per workload, classifies every capability
// against the knowledge base, and rolls verdicts up into readiness
// summaries. The whole pipeline is a pure in-memory computation; the same
// inputs always produce byte-identical outputs.
package engine

import (
	"github.com/migratekit/intent-reconciler/internal/kb"
	"github.com/migratekit/intent-reconciler/internal/models"
	"github.com/migratekit/intent-reconciler/internal/registry"
)

// Options tunes behavior left open to deployment policy.
type Options struct {
	// DriftTolerance is the relative numeric difference below which two
	// values are treated as agreeing. 0 means any difference is drift.
	DriftTolerance float64
	// MostlyAutomaticThreshold is the SUPPORTED+PARTIAL share required
	// for the mostly-automatic workload label.
	MostlyAutomaticThreshold float64
}

// Engine reconciles source intent records. Safe for concurrent use: the
// registry and knowledge base are read-only for the life of the engine.
type Engine struct {
	reg  *registry.Registry
	kb   *kb.KnowledgeBase
	opts Options
}

// New creates an engine over a loaded registry and knowledge base.
func New(reg *registry.Registry, knowledge *kb.KnowledgeBase, opts Options) *Engine {
	if opts.MostlyAutomaticThreshold <= 0 {
		opts.MostlyAutomaticThreshold = 0.8
	}
	return &Engine{reg: reg, kb: knowledge, opts: opts}
}

// WorkloadPreview is the dry-run result for one workload: what a merge
// would have to deal with, without producing a Unified Intent.
type WorkloadPreview struct {
	Workload         string                   `json:"workload" yaml:"workload"`
	ExcludedSources  []string                 `json:"excluded_sources,omitempty" yaml:"excluded_sources,omitempty"`
	ValidationErrors []models.ValidationError `json:"validation_errors,omitempty" yaml:"validation_errors,omitempty"`
	Findings         []models.ConflictFinding `json:"findings" yaml:"findings"`
	Unmapped         []models.UnmappedField   `json:"unmapped_fields,omitempty" yaml:"unmapped_fields,omitempty"`
}

// WorkloadResult is the full pipeline result for one workload.
type WorkloadResult struct {
	Workload         string                     `json:"workload" yaml:"workload"`
	ExcludedSources  []string                   `json:"excluded_sources,omitempty" yaml:"excluded_sources,omitempty"`
	ValidationErrors []models.ValidationError   `json:"validation_errors,omitempty" yaml:"validation_errors,omitempty"`
	Findings         []models.ConflictFinding   `json:"findings" yaml:"findings"`
	Intent           *models.UnifiedIntent      `json:"intent" yaml:"intent"`
	Verdicts         []models.CapabilityVerdict `json:"verdicts" yaml:"verdicts"`
	Summary          models.WorkloadSummary     `json:"summary" yaml:"summary"`
}

// PreviewResult is a dry run over a set of workloads.
type PreviewResult struct {
	Workloads []WorkloadPreview `json:"workloads" yaml:"workloads"`
}

// RunResult is the full pipeline output for a set of workloads.
type RunResult struct {
	Workloads []WorkloadResult        `json:"workloads" yaml:"workloads"`
	Portfolio models.PortfolioSummary `json:"portfolio" yaml:"portfolio"`
}

// Result returns the run result for a named workload, or nil.
func (r *RunResult) Result(name string) *WorkloadResult {
	for i := range r.Workloads {
		if r.Workloads[i].Workload == name {
			return &r.Workloads[i]
		}
	}
	return nil
}
