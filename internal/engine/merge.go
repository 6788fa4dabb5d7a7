package engine

import (
	"fmt"
	"sort"

	"github.com/migratekit/intent-reconciler/internal/models"
)

// merge resolves every canonical field group into the workload's Unified
// Intent, recording each resolution in the merge ledger. Groups with
// blocking findings and manual-required groups with disagreeing values go
// to the unresolved-conflicts list instead; nothing is ever silently
// dropped. Idempotent: unchanged inputs produce a byte-identical intent.
func (e *Engine) merge(workload string, records []canonicalRecord, findings []models.ConflictFinding, unmapped []models.UnmappedField) *models.UnifiedIntent {
	groups, keys := groupFields(records)

	blocking := make(map[groupKey][]models.ConflictFinding)
	for _, f := range findings {
		if f.Severity == models.SeverityBlocking {
			gk := groupKey{Key: f.FieldKey, When: f.When}
			blocking[gk] = append(blocking[gk], f)
		}
	}

	intent := &models.UnifiedIntent{
		Workload:     workload,
		Capabilities: capabilityUnion(records),
		Unmapped:     unmapped,
	}

	var fields []models.UnifiedField
	appendValue := func(key string, rv models.ResolvedValue) {
		if n := len(fields); n > 0 && fields[n-1].Key == key {
			fields[n-1].Values = append(fields[n-1].Values, rv)
			return
		}
		fields = append(fields, models.UnifiedField{Key: key, Values: []models.ResolvedValue{rv}})
	}

	for _, gk := range keys {
		instances := groups[gk]

		if blocked, ok := blocking[gk]; ok {
			intent.Unresolved = append(intent.Unresolved, blocked...)
			continue
		}

		policy := e.reg.Policy(gk.Key)
		distinct := distinctValues(instances)

		var chosen interface{}
		switch {
		case len(distinct) == 1:
			// Sources agree; any policy resolves to the shared value.
			chosen = distinct[0]
		case policy == models.PolicyManualRequired:
			intent.Unresolved = append(intent.Unresolved, models.ConflictFinding{
				FieldKey: gk.Key,
				When:     gk.When,
				Kind:     models.ConflictManualRequired,
				Severity: models.SeverityBlocking,
				Sources:  sourceIDs(instances),
				Values:   distinct,
				Detail:   fmt.Sprintf("field %s is marked manual-required and sources disagree", gk.Key),
			})
			continue
		default:
			chosen, _ = e.applyPolicy(policy, gk.Key, instances)
		}

		typ := e.fieldType(gk.Key, instances)
		chosen = normalizeValue(typ, chosen)

		appendValue(gk.Key, models.ResolvedValue{
			When:       gk.When,
			Type:       typ,
			Value:      chosen,
			Constraint: mergeConstraints(instances),
			Sources:    sourceIDs(instances),
		})
		intent.Ledger = append(intent.Ledger, models.LedgerEntry{
			FieldKey:      gk.Key,
			When:          gk.When,
			Policy:        policy,
			Chosen:        chosen,
			Contributions: contributions(instances),
		})
	}

	intent.Fields = fields
	intent.NeedsResolution = len(intent.Unresolved) > 0
	return intent
}

// fieldType is the registry's declared type where the key is registered,
// otherwise the first contributor's declaration.
func (e *Engine) fieldType(key string, instances []fieldInstance) models.FieldType {
	if spec, ok := e.reg.Spec(key); ok {
		return spec.Type
	}
	return instances[0].Value.Type
}

// normalizeValue fixes the Go representation of a resolved value so the
// serialized intent does not depend on which decoder produced the inputs.
func normalizeValue(typ models.FieldType, v interface{}) interface{} {
	switch typ {
	case models.TypeInt:
		if f, ok := toFloat(v); ok {
			return int64(f)
		}
	case models.TypeFloat:
		if f, ok := toFloat(v); ok {
			return f
		}
	case models.TypeList:
		if list, ok := stringList(v); ok {
			return list
		}
	}
	return v
}

// mergeConstraints combines contributors' constraints so the unified
// bound admits every source's stated need: the lowest floor, the highest
// ceiling, the common enum members.
func mergeConstraints(instances []fieldInstance) *models.Constraint {
	var merged models.Constraint
	var enums [][]string
	any := false
	for _, inst := range instances {
		c := inst.Value.Constraint
		if c == nil {
			continue
		}
		any = true
		if c.Min != nil && (merged.Min == nil || *c.Min < *merged.Min) {
			v := *c.Min
			merged.Min = &v
		}
		if c.Max != nil && (merged.Max == nil || *c.Max > *merged.Max) {
			v := *c.Max
			merged.Max = &v
		}
		if len(c.Enum) > 0 {
			enums = append(enums, c.Enum)
		}
		if c.Pattern != "" && merged.Pattern == "" {
			merged.Pattern = c.Pattern
		}
	}
	if !any {
		return nil
	}
	if len(enums) == 1 {
		merged.Enum = append([]string(nil), enums[0]...)
		sort.Strings(merged.Enum)
	} else if len(enums) > 1 {
		merged.Enum = intersect(enums)
	}
	return &merged
}

func contributions(instances []fieldInstance) []models.Contribution {
	out := make([]models.Contribution, len(instances))
	for i, inst := range instances {
		out[i] = models.Contribution{SourceID: inst.SourceID, Value: inst.Raw}
	}
	return out
}

// capabilityUnion collects the capability tags across all valid records,
// sorted and de-duplicated.
func capabilityUnion(records []canonicalRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		for _, c := range rec.Capabilities {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}
