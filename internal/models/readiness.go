package models

// Verdict classifies how mechanically a capability can be realized on the
// target platform.
type Verdict string

const (
	VerdictSupported Verdict = "SUPPORTED"
	VerdictPartial   Verdict = "PARTIAL"
	VerdictBlocked   Verdict = "BLOCKED"
	VerdictManual    Verdict = "MANUAL"
)

// Downgrade returns the verdict one level closer to MANUAL. MANUAL never
// moves; BLOCKED is the floor for automatic downgrades.
func (v Verdict) Downgrade() Verdict {
	switch v {
	case VerdictSupported:
		return VerdictPartial
	case VerdictPartial:
		return VerdictBlocked
	}
	return v
}

// Workload readiness labels.
const (
	LabelFullyAutomatic  = "fully-automatic"
	LabelMostlyAutomatic = "mostly-automatic"
	LabelNeedsManualWork = "needs-manual-work"
)

// CapabilityVerdict is the readiness classification of one capability for
// one workload. Recomputed fresh every run, never mutated in place.
type CapabilityVerdict struct {
	Capability     string   `json:"capability" yaml:"capability"`
	Verdict        Verdict  `json:"verdict" yaml:"verdict"`
	Rationale      string   `json:"rationale" yaml:"rationale"`
	Confidence     float64  `json:"confidence" yaml:"confidence"`
	MissingContext []string `json:"missing_context,omitempty" yaml:"missing_context,omitempty"`
}

// WorkloadSummary rolls one workload's capability verdicts into counts and
// an overall label.
type WorkloadSummary struct {
	Workload string              `json:"workload" yaml:"workload"`
	Label    string              `json:"label" yaml:"label"`
	Counts   map[Verdict]int     `json:"counts" yaml:"counts"`
	Verdicts []CapabilityVerdict `json:"verdicts" yaml:"verdicts"`
}

// PortfolioSummary sums verdict counts and workload labels across a whole
// run. Counts are summed, never averaged across workloads.
type PortfolioSummary struct {
	Workloads int             `json:"workloads" yaml:"workloads"`
	Counts    map[Verdict]int `json:"counts" yaml:"counts"`
	Labels    map[string]int  `json:"labels" yaml:"labels"`
}
