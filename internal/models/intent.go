package models

// PolicyKind names a merge resolution policy.
type PolicyKind string

const (
	PolicyUnion           PolicyKind = "union"
	PolicyMostRestrictive PolicyKind = "most-restrictive"
	PolicyMaximum         PolicyKind = "maximum"
	PolicyMinimum         PolicyKind = "minimum"
	PolicyFirstWins       PolicyKind = "first-wins"
	PolicyLastWins        PolicyKind = "last-wins"
	PolicyManualRequired  PolicyKind = "manual-required"
)

// Contribution is one source's original value for a merged field.
type Contribution struct {
	SourceID string      `json:"source_id" yaml:"source_id"`
	Value    interface{} `json:"value" yaml:"value"`
}

// LedgerEntry is the audit record for one resolved field value: which
// policy was applied, what was chosen, and what each source contributed.
type LedgerEntry struct {
	FieldKey      string         `json:"field_key" yaml:"field_key"`
	When          string         `json:"when,omitempty" yaml:"when,omitempty"`
	Policy        PolicyKind     `json:"policy" yaml:"policy"`
	Chosen        interface{}    `json:"chosen" yaml:"chosen"`
	Contributions []Contribution `json:"contributions" yaml:"contributions"`
}

// ResolvedValue is one final value for a canonical field under one
// applicability condition.
type ResolvedValue struct {
	When       string      `json:"when,omitempty" yaml:"when,omitempty"`
	Type       FieldType   `json:"type" yaml:"type"`
	Value      interface{} `json:"value" yaml:"value"`
	Constraint *Constraint `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	Sources    []string    `json:"contributing_sources" yaml:"contributing_sources"`
}

// UnifiedField is one canonical field in the merged intent. A field with
// condition-scoped values has one entry per distinct condition.
type UnifiedField struct {
	Key    string          `json:"key" yaml:"key"`
	Values []ResolvedValue `json:"values" yaml:"values"`
}

// UnifiedIntent is the single merged description of one workload.
// NeedsResolution is set when blocking conflicts remain; downstream
// artifact generation must refuse to proceed while it is set.
type UnifiedIntent struct {
	Workload        string            `json:"workload" yaml:"workload"`
	Fields          []UnifiedField    `json:"fields" yaml:"fields"`
	Capabilities    []string          `json:"capabilities" yaml:"capabilities"`
	Ledger          []LedgerEntry     `json:"ledger" yaml:"ledger"`
	Unresolved      []ConflictFinding `json:"unresolved_conflicts" yaml:"unresolved_conflicts"`
	Unmapped        []UnmappedField   `json:"unmapped_fields" yaml:"unmapped_fields"`
	NeedsResolution bool              `json:"needs_resolution" yaml:"needs_resolution"`
}

// Field returns the unified field for a canonical key, or nil.
func (u *UnifiedIntent) Field(key string) *UnifiedField {
	for i := range u.Fields {
		if u.Fields[i].Key == key {
			return &u.Fields[i]
		}
	}
	return nil
}

// HasField reports whether a canonical key was resolved to at least one value.
func (u *UnifiedIntent) HasField(key string) bool {
	f := u.Field(key)
	return f != nil && len(f.Values) > 0
}
