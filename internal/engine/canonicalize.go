package engine

import (
	"sort"

	"github.com/migratekit/intent-reconciler/internal/models"
)

// groupKey identifies one mergeable group: a canonical field key plus an
// applicability condition. Values under different conditions never merge.
type groupKey struct {
	Key  string
	When string
}

// fieldInstance is one source's contribution to a group. Raw keeps the
// value as submitted, before value-spelling aliases were applied; the
// merge ledger records it so every unified value can be traced back.
type fieldInstance struct {
	SourceID string
	Order    int
	Value    models.FieldValue
	Raw      interface{}
}

// canonicalRecord is one source record after field names and value
// spellings have been mapped onto the canonical vocabulary. A key holds
// more than one instance when two source field names alias to the same
// canonical key; both contributions are kept so the disagreement is
// detected, never swallowed.
type canonicalRecord struct {
	SourceID     string
	Order        int
	Capabilities []string
	Fields       map[groupKey][]fieldInstance
	Keys         []groupKey // sorted, unique, for deterministic iteration
}

// canonicalize maps one record onto the canonical vocabulary. Fields with
// no canonical key are returned separately, untouched.
func (e *Engine) canonicalize(rec models.SourceRecord, order int) (canonicalRecord, []models.UnmappedField) {
	cr := canonicalRecord{
		SourceID:     rec.SourceID,
		Order:        order,
		Capabilities: rec.Capabilities,
		Fields:       make(map[groupKey][]fieldInstance, len(rec.Fields)),
	}
	var unmapped []models.UnmappedField

	names := make([]string, 0, len(rec.Fields))
	for name := range rec.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fv := rec.Fields[name]
		key, ok := e.reg.Resolve(name)
		if !ok {
			unmapped = append(unmapped, models.UnmappedField{
				SourceID: rec.SourceID,
				Name:     name,
				Value:    fv.Value,
			})
			continue
		}
		raw := fv.Value
		switch v := fv.Value.(type) {
		case string:
			if canon, applied := e.reg.CanonicalValue(key, v); applied {
				fv.Value = canon
			}
		default:
			if list, ok := stringList(fv.Value); ok && fv.Type == models.TypeList {
				changed := false
				for i, el := range list {
					if canon, applied := e.reg.CanonicalValue(key, el); applied {
						list[i] = canon
						changed = true
					}
				}
				if changed {
					fv.Value = list
				}
			}
		}
		gk := groupKey{Key: key, When: fv.When}
		if _, dup := cr.Fields[gk]; !dup {
			cr.Keys = append(cr.Keys, gk)
		}
		cr.Fields[gk] = append(cr.Fields[gk], fieldInstance{
			SourceID: rec.SourceID,
			Order:    order,
			Value:    fv,
			Raw:      raw,
		})
	}
	sort.Slice(cr.Keys, func(i, j int) bool { return lessGroupKey(cr.Keys[i], cr.Keys[j]) })
	return cr, unmapped
}

// lessGroupKey orders groups by key, then condition. The unconditional
// entry sorts first within a key.
func lessGroupKey(a, b groupKey) bool {
	if a.Key != b.Key {
		return a.Key < b.Key
	}
	return a.When < b.When
}

// groupFields collects per-group contributions across the valid records,
// keeping import order within each group.
func groupFields(records []canonicalRecord) (map[groupKey][]fieldInstance, []groupKey) {
	groups := make(map[groupKey][]fieldInstance)
	for _, rec := range records {
		for _, gk := range rec.Keys {
			groups[gk] = append(groups[gk], rec.Fields[gk]...)
		}
	}
	keys := make([]groupKey, 0, len(groups))
	for gk := range groups {
		keys = append(keys, gk)
	}
	sort.Slice(keys, func(i, j int) bool { return lessGroupKey(keys[i], keys[j]) })
	return groups, keys
}
