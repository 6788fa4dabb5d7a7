package engine

import (
	"github.com/migratekit/intent-reconciler/internal/models"
)

// summarize rolls one workload's capability verdicts into counts and an
// overall label. A workload with no capabilities has nothing to automate
// and counts as fully-automatic.
func (e *Engine) summarize(workload string, verdicts []models.CapabilityVerdict) models.WorkloadSummary {
	counts := map[models.Verdict]int{
		models.VerdictSupported: 0,
		models.VerdictPartial:   0,
		models.VerdictBlocked:   0,
		models.VerdictManual:    0,
	}
	for _, v := range verdicts {
		counts[v.Verdict]++
	}

	total := len(verdicts)
	label := models.LabelNeedsManualWork
	switch {
	case counts[models.VerdictSupported] == total:
		label = models.LabelFullyAutomatic
	case float64(counts[models.VerdictSupported]+counts[models.VerdictPartial]) >= e.opts.MostlyAutomaticThreshold*float64(total):
		label = models.LabelMostlyAutomatic
	}

	return models.WorkloadSummary{
		Workload: workload,
		Label:    label,
		Counts:   counts,
		Verdicts: verdicts,
	}
}

// portfolio sums workload summaries into the portfolio rollup. Verdict
// counts are summed and labels tallied; percentages are never averaged
// across workloads.
func portfolio(summaries []models.WorkloadSummary) models.PortfolioSummary {
	p := models.PortfolioSummary{
		Workloads: len(summaries),
		Counts:    make(map[models.Verdict]int),
		Labels:    make(map[string]int),
	}
	for _, s := range summaries {
		for verdict, n := range s.Counts {
			p.Counts[verdict] += n
		}
		p.Labels[s.Label]++
	}
	return p
}
