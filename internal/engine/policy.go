package engine

import (
	"sort"

	"github.com/migratekit/intent-reconciler/internal/models"
)

// applyPolicy resolves one group's contributions to a single value. The
// second return is false only for manual-required, which never resolves
// automatically. Instances arrive in import order.
func (e *Engine) applyPolicy(policy models.PolicyKind, key string, instances []fieldInstance) (interface{}, bool) {
	switch policy {
	case models.PolicyUnion:
		return resolveUnion(instances), true
	case models.PolicyMostRestrictive:
		return e.resolveMostRestrictive(key, instances), true
	case models.PolicyMaximum:
		return resolveExtreme(instances, func(a, b float64) bool { return a > b }), true
	case models.PolicyMinimum:
		return resolveExtreme(instances, func(a, b float64) bool { return a < b }), true
	case models.PolicyFirstWins:
		return instances[0].Value.Value, true
	case models.PolicyLastWins:
		return instances[len(instances)-1].Value.Value, true
	}
	return nil, false
}

// resolveUnion concatenates list (or scalar string) contributions and
// de-duplicates by value identity. The result is sorted so it does not
// depend on input record order.
func resolveUnion(instances []fieldInstance) []string {
	seen := make(map[string]bool)
	var out []string
	for _, inst := range instances {
		if list, ok := stringList(inst.Value.Value); ok {
			for _, el := range list {
				if !seen[el] {
					seen[el] = true
					out = append(out, el)
				}
			}
			continue
		}
		s := valueString(inst.Value.Value)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// resolveMostRestrictive picks the safer option: true wins for booleans;
// for enums the registry's member order is the restriction order and the
// highest member wins.
func (e *Engine) resolveMostRestrictive(key string, instances []fieldInstance) interface{} {
	if _, ok := instances[0].Value.Value.(bool); ok {
		for _, inst := range instances {
			if b, ok := inst.Value.Value.(bool); ok && b {
				return true
			}
		}
		return false
	}

	var order []string
	if spec, ok := e.reg.Spec(key); ok {
		order = spec.Enum
	}
	best := ""
	bestRank := -1
	for _, inst := range instances {
		s, ok := inst.Value.Value.(string)
		if !ok {
			s = valueString(inst.Value.Value)
		}
		rank := enumRank(order, s)
		if rank > bestRank || (rank == bestRank && s > best) {
			best = s
			bestRank = rank
		}
	}
	return best
}

// enumRank returns the position of a member in the declared order, or -1
// for members outside it (those lose to any declared member).
func enumRank(order []string, s string) int {
	for i, m := range order {
		if m == s {
			return i
		}
	}
	return -1
}

// resolveExtreme picks the numeric extreme across contributions, keeping
// integer representation when every contribution is integral.
func resolveExtreme(instances []fieldInstance, better func(a, b float64) bool) interface{} {
	var best float64
	integral := true
	first := true
	for _, inst := range instances {
		f, ok := toFloat(inst.Value.Value)
		if !ok {
			continue
		}
		if !isIntegral(inst.Value.Value) {
			integral = false
		}
		if first || better(f, best) {
			best = f
			first = false
		}
	}
	if integral {
		return int64(best)
	}
	return best
}
