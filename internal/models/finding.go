package models

// ConflictKind classifies a disagreement between sources over one field.
type ConflictKind string

const (
	ConflictNamingOnly             ConflictKind = "naming-only"
	ConflictTypeMismatch           ConflictKind = "type-mismatch"
	ConflictValueDrift             ConflictKind = "value-drift"
	ConflictConstraintIncompatible ConflictKind = "constraint-incompatible"
	ConflictManualRequired         ConflictKind = "manual-required"
)

// Severity of a conflict finding.
type Severity string

const (
	SeverityInfo     Severity = "informational"
	SeverityBlocking Severity = "blocking"
)

// ConflictFinding records one disagreement between two or more sources.
// Sources are listed in import order, so repeated runs over the same
// inputs produce identical findings.
type ConflictFinding struct {
	FieldKey string        `json:"field_key" yaml:"field_key"`
	When     string        `json:"when,omitempty" yaml:"when,omitempty"`
	Kind     ConflictKind  `json:"kind" yaml:"kind"`
	Severity Severity      `json:"severity" yaml:"severity"`
	Sources  []string      `json:"contributing_sources" yaml:"contributing_sources"`
	Values   []interface{} `json:"values" yaml:"values"`
	Detail   string        `json:"detail" yaml:"detail"`
}

// ValidationError describes one field value that failed schema validation.
type ValidationError struct {
	SourceID string `json:"source_id" yaml:"source_id"`
	FieldKey string `json:"field_key" yaml:"field_key"`
	Expected string `json:"expected" yaml:"expected"`
	Actual   string `json:"actual" yaml:"actual"`
}

// UnmappedField is a field with no canonical key mapping. It is carried
// through untouched and flagged for review, never merged and never dropped.
type UnmappedField struct {
	SourceID string      `json:"source_id" yaml:"source_id"`
	Name     string      `json:"name" yaml:"name"`
	Value    interface{} `json:"value" yaml:"value"`
}
