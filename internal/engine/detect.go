package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/migratekit/intent-reconciler/internal/models"
)

// detect compares every group with two or more contributors and emits
// typed conflict findings. Groups are visited in sorted key order and
// contributors stay in import order, so identical inputs always produce
// identical findings. Detection is the resolver's read-only dry run; it
// shares the value comparison helpers with merge.
func (e *Engine) detect(groups map[groupKey][]fieldInstance, keys []groupKey) []models.ConflictFinding {
	var findings []models.ConflictFinding
	for _, gk := range keys {
		instances := groups[gk]
		if len(instances) < 2 {
			continue
		}
		findings = append(findings, e.detectGroup(gk, instances)...)
	}
	return findings
}

func (e *Engine) detectGroup(gk groupKey, instances []fieldInstance) []models.ConflictFinding {
	var findings []models.ConflictFinding
	sources := sourceIDs(instances)

	if f, incompatible := constraintFinding(gk, instances, sources); incompatible {
		findings = append(findings, f)
	}

	// Declared types that coerce onto the same family (string/enum, or
	// int/float) are not a mismatch; anything else needs a human.
	if !sameTypeFamily(instances) {
		findings = append(findings, models.ConflictFinding{
			FieldKey: gk.Key,
			When:     gk.When,
			Kind:     models.ConflictTypeMismatch,
			Severity: models.SeverityBlocking,
			Sources:  sources,
			Values:   declaredTypes(instances),
			Detail:   "sources declare incompatible types for the same field",
		})
		return findings
	}

	// Values equal once aliasing unified the spellings: no finding.
	if allValuesEqual(instances) {
		return findings
	}

	// Same concept, different literal naming the alias table did not
	// cover (case or spacing only).
	if equalIgnoringSpelling(instances) {
		findings = append(findings, models.ConflictFinding{
			FieldKey: gk.Key,
			When:     gk.When,
			Kind:     models.ConflictNamingOnly,
			Severity: models.SeverityInfo,
			Sources:  sources,
			Values:   distinctValues(instances),
			Detail:   "spellings differ but describe the same value; add a value alias to silence this",
		})
		return findings
	}

	if drift, numeric := relativeDrift(instances); numeric {
		if drift <= e.opts.DriftTolerance {
			return findings
		}
		findings = append(findings, models.ConflictFinding{
			FieldKey: gk.Key,
			When:     gk.When,
			Kind:     models.ConflictValueDrift,
			Severity: models.SeverityInfo,
			Sources:  sources,
			Values:   distinctValues(instances),
			Detail:   fmt.Sprintf("numeric values drift by %.0f%%; resolved by merge policy", drift*100),
		})
		return findings
	}

	findings = append(findings, models.ConflictFinding{
		FieldKey: gk.Key,
		When:     gk.When,
		Kind:     models.ConflictValueDrift,
		Severity: models.SeverityInfo,
		Sources:  sources,
		Values:   distinctValues(instances),
		Detail:   "values differ; resolved by merge policy",
	})
	return findings
}

// constraintFinding checks whether the contributors' declared constraints
// can all be satisfied at once. A floor above another source's ceiling, or
// enum domains with an empty intersection, cannot.
func constraintFinding(gk groupKey, instances []fieldInstance, sources []string) (models.ConflictFinding, bool) {
	highestMin := math.Inf(-1)
	lowestMax := math.Inf(1)
	var bounds []string
	var enums [][]string
	for _, inst := range instances {
		c := inst.Value.Constraint
		if c == nil {
			continue
		}
		if c.Min != nil {
			highestMin = math.Max(highestMin, *c.Min)
			bounds = append(bounds, fmt.Sprintf("%s requires >= %v", inst.SourceID, *c.Min))
		}
		if c.Max != nil {
			lowestMax = math.Min(lowestMax, *c.Max)
			bounds = append(bounds, fmt.Sprintf("%s requires <= %v", inst.SourceID, *c.Max))
		}
		if len(c.Enum) > 0 {
			enums = append(enums, c.Enum)
		}
	}

	if highestMin > lowestMax {
		return models.ConflictFinding{
			FieldKey: gk.Key,
			When:     gk.When,
			Kind:     models.ConflictConstraintIncompatible,
			Severity: models.SeverityBlocking,
			Sources:  sources,
			Values:   distinctValues(instances),
			Detail:   "mutually exclusive constraints: " + strings.Join(bounds, ", "),
		}, true
	}

	if len(enums) > 1 && len(intersect(enums)) == 0 {
		return models.ConflictFinding{
			FieldKey: gk.Key,
			When:     gk.When,
			Kind:     models.ConflictConstraintIncompatible,
			Severity: models.SeverityBlocking,
			Sources:  sources,
			Values:   distinctValues(instances),
			Detail:   "enum constraints have no common member",
		}, true
	}
	return models.ConflictFinding{}, false
}

// relativeDrift returns the spread between the lowest and highest numeric
// value relative to the largest magnitude. Second return is false for
// non-numeric groups.
func relativeDrift(instances []fieldInstance) (float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, inst := range instances {
		f, ok := toFloat(inst.Value.Value)
		if !ok {
			return 0, false
		}
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}
	if lo == hi {
		return 0, true
	}
	denom := math.Max(math.Abs(lo), math.Abs(hi))
	if denom == 0 {
		return 0, true
	}
	return (hi - lo) / denom, true
}

func sourceIDs(instances []fieldInstance) []string {
	ids := make([]string, len(instances))
	for i, inst := range instances {
		ids[i] = inst.SourceID
	}
	return ids
}

// typeFamily buckets declared types by what they coerce to.
func typeFamily(t models.FieldType) string {
	switch t {
	case models.TypeInt, models.TypeFloat:
		return "numeric"
	case models.TypeString, models.TypeEnum:
		return "text"
	}
	return string(t)
}

func sameTypeFamily(instances []fieldInstance) bool {
	for _, inst := range instances[1:] {
		if typeFamily(inst.Value.Type) != typeFamily(instances[0].Value.Type) {
			return false
		}
	}
	return true
}

// equalIgnoringSpelling reports whether string values differ only by case
// or surrounding whitespace.
func equalIgnoringSpelling(instances []fieldInstance) bool {
	first, ok := instances[0].Value.Value.(string)
	if !ok {
		return false
	}
	norm := strings.ToLower(strings.TrimSpace(first))
	for _, inst := range instances[1:] {
		s, ok := inst.Value.Value.(string)
		if !ok || strings.ToLower(strings.TrimSpace(s)) != norm {
			return false
		}
	}
	return true
}

func declaredTypes(instances []fieldInstance) []interface{} {
	out := make([]interface{}, len(instances))
	for i, inst := range instances {
		out[i] = string(inst.Value.Type)
	}
	return out
}

func allValuesEqual(instances []fieldInstance) bool {
	for _, inst := range instances[1:] {
		if !equalValues(inst.Value.Value, instances[0].Value.Value) {
			return false
		}
	}
	return true
}

// distinctValues returns the observed values in import order with exact
// duplicates collapsed.
func distinctValues(instances []fieldInstance) []interface{} {
	var out []interface{}
	for _, inst := range instances {
		dup := false
		for _, seen := range out {
			if equalValues(seen, inst.Value.Value) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, inst.Value.Value)
		}
	}
	return out
}

func intersect(sets [][]string) []string {
	counts := make(map[string]int)
	for _, set := range sets {
		seen := make(map[string]bool)
		for _, s := range set {
			if !seen[s] {
				counts[s]++
				seen[s] = true
			}
		}
	}
	var out []string
	for s, n := range counts {
		if n == len(sets) {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
