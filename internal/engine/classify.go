package engine

import (
	"strings"

	"github.com/migratekit/intent-reconciler/internal/models"
)

// classify walks every capability in the unified intent against the
// knowledge base. The default verdict is downgraded one level when
// required context is absent from the intent, and one further level when
// required context is stuck in the unresolved-conflicts list. MANUAL is
// terminal in both directions. Rationale text is assembled from fixed
// parts in a fixed order so identical inputs produce identical wording.
func (e *Engine) classify(intent *models.UnifiedIntent) []models.CapabilityVerdict {
	unresolved := make(map[string]bool)
	for _, f := range intent.Unresolved {
		unresolved[f.FieldKey] = true
	}

	verdicts := make([]models.CapabilityVerdict, 0, len(intent.Capabilities))
	for _, tag := range intent.Capabilities {
		entry, ok := e.kb.Lookup(tag)
		if !ok {
			verdicts = append(verdicts, models.CapabilityVerdict{
				Capability: tag,
				Verdict:    models.VerdictManual,
				Rationale:  "unknown capability: " + tag,
				Confidence: 0,
			})
			continue
		}

		var missing, stuck []string
		for _, key := range entry.RequiredContext {
			switch {
			case unresolved[key]:
				stuck = append(stuck, key)
			case !intent.HasField(key):
				missing = append(missing, key)
			}
		}

		verdict := entry.VerdictDefault
		if verdict != models.VerdictManual {
			if len(missing) > 0 {
				verdict = verdict.Downgrade()
			}
			if len(stuck) > 0 {
				verdict = verdict.Downgrade()
			}
		}

		total := len(entry.RequiredContext)
		confidence := 1.0
		if total > 0 {
			confidence = float64(total-len(missing)-len(stuck)) / float64(total)
		}

		parts := []string{"maps to " + entry.TargetEquivalent}
		parts = append(parts, entry.Caveats...)
		if len(missing) > 0 {
			parts = append(parts, "missing context: "+strings.Join(missing, ", "))
		}
		if len(stuck) > 0 {
			parts = append(parts, "unresolved context: "+strings.Join(stuck, ", "))
		}

		verdicts = append(verdicts, models.CapabilityVerdict{
			Capability:     tag,
			Verdict:        verdict,
			Rationale:      strings.Join(parts, "; "),
			Confidence:     confidence,
			MissingContext: append(missing, stuck...),
		})
	}
	return verdicts
}
