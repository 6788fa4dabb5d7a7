package models

import (
	"sort"
	"sync"
)

// FieldType is the declared type of a field value.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeBool   FieldType = "bool"
	TypeEnum   FieldType = "enum"
	TypeList   FieldType = "list"
)

// Constraint is an optional restriction attached to a field value.
// Min/Max apply to numeric types, Enum to string/enum types, Pattern
// (a regular expression) to strings.
type Constraint struct {
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Enum    []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Pattern string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// FieldValue is one typed value as extracted from a source.
// When is an optional applicability condition (e.g. "environment=prod");
// values under different conditions are merged separately, never collapsed.
type FieldValue struct {
	Type       FieldType   `json:"type" yaml:"type"`
	Value      interface{} `json:"value" yaml:"value"`
	When       string      `json:"when,omitempty" yaml:"when,omitempty"`
	Constraint *Constraint `json:"constraint,omitempty" yaml:"constraint,omitempty"`
}

// SourceRecord is one source's normalized description of a workload's
// provisioning requirements. Produced by the external extractor; immutable
// once submitted. Field names are the extractor's spelling and are mapped
// onto canonical keys by the engine before anything else happens.
type SourceRecord struct {
	SourceID      string                `json:"source_id" yaml:"source_id"`
	SourceKind    string                `json:"source_kind" yaml:"source_kind"`
	Fields        map[string]FieldValue `json:"fields" yaml:"fields"`
	Capabilities  []string              `json:"capabilities" yaml:"capabilities"`
	RawProvenance string                `json:"raw_provenance,omitempty" yaml:"raw_provenance,omitempty"`
}

// Workload is a named batch of source records. Record order is import
// order and drives first-wins/last-wins resolution.
type Workload struct {
	Name    string         `json:"name"`
	Records []SourceRecord `json:"records"`
}

// WorkloadStore is an in-memory thread-safe store for workload batches.
type WorkloadStore struct {
	mu        sync.RWMutex
	workloads map[string]*Workload
}

// NewWorkloadStore creates an empty workload store.
func NewWorkloadStore() *WorkloadStore {
	return &WorkloadStore{workloads: make(map[string]*Workload)}
}

// Put stores a workload batch, replacing any previous batch with the same name.
func (s *WorkloadStore) Put(w *Workload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workloads[w.Name] = w
}

// Get returns a workload by name, or nil if not found.
func (s *WorkloadStore) Get(name string) *Workload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workloads[name]
}

// List returns all workloads sorted by name.
func (s *WorkloadStore) List() []*Workload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Workload, 0, len(s.workloads))
	for _, w := range s.workloads {
		result = append(result, w)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Delete removes a workload by name.
func (s *WorkloadStore) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workloads[name]; !ok {
		return false
	}
	delete(s.workloads, name)
	return true
}
