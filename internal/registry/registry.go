// Package registry holds the canonical field vocabulary: every canonical
// field key, its declared type and merge-policy class, and the alias tables
// that map source-specific field names and value spellings onto it. The
// registry is configuration data loaded once at startup; new source naming
// conventions are data changes, not code changes.
package registry

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/migratekit/intent-reconciler/internal/models"
)

// FieldSpec declares one canonical field key.
type FieldSpec struct {
	Key     string           `yaml:"key" validate:"required"`
	Type    models.FieldType `yaml:"type" validate:"required,oneof=string int float bool enum list"`
	Class   string           `yaml:"class" validate:"required"`
	Enum    []string         `yaml:"enum,omitempty"`
	Aliases []string         `yaml:"aliases,omitempty"`
	// Values maps source value spellings onto the canonical spelling,
	// e.g. "Production" -> "prod". Matching is case-insensitive.
	Values map[string]string `yaml:"values,omitempty"`
}

// Document is the on-disk registry format.
type Document struct {
	Version  string                       `yaml:"version"`
	Fields   []FieldSpec                  `yaml:"fields" validate:"required,min=1,dive"`
	Policies map[string]models.PolicyKind `yaml:"policies" validate:"required,min=1"`
}

var validPolicies = map[models.PolicyKind]bool{
	models.PolicyUnion:           true,
	models.PolicyMostRestrictive: true,
	models.PolicyMaximum:         true,
	models.PolicyMinimum:         true,
	models.PolicyFirstWins:       true,
	models.PolicyLastWins:        true,
	models.PolicyManualRequired:  true,
}

// Registry is the loaded, indexed field vocabulary. Read-only after Load.
type Registry struct {
	Version  string
	fields   map[string]FieldSpec
	aliases  map[string]string // normalized name -> canonical key
	values   map[string]map[string]string
	policies map[string]models.PolicyKind
}

// Load reads and indexes a registry document from a YAML file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return r, nil
}

// Parse builds a Registry from YAML bytes, rejecting malformed documents.
func Parse(data []byte) (*Registry, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&doc); err != nil {
		return nil, err
	}
	for class, kind := range doc.Policies {
		if !validPolicies[kind] {
			return nil, fmt.Errorf("policy class %q: unknown policy kind %q", class, kind)
		}
	}

	r := &Registry{
		Version:  doc.Version,
		fields:   make(map[string]FieldSpec, len(doc.Fields)),
		aliases:  make(map[string]string),
		values:   make(map[string]map[string]string),
		policies: doc.Policies,
	}
	for _, f := range doc.Fields {
		if _, dup := r.fields[f.Key]; dup {
			return nil, fmt.Errorf("duplicate canonical key %q", f.Key)
		}
		kind, ok := doc.Policies[f.Class]
		if !ok {
			return nil, fmt.Errorf("field %q: class %q has no policy", f.Key, f.Class)
		}
		if (kind == models.PolicyMaximum || kind == models.PolicyMinimum) &&
			f.Type != models.TypeInt && f.Type != models.TypeFloat {
			return nil, fmt.Errorf("field %q: policy %s requires a numeric type, got %s", f.Key, kind, f.Type)
		}
		r.fields[f.Key] = f
		r.aliases[normalize(f.Key)] = f.Key
		for _, a := range f.Aliases {
			norm := normalize(a)
			if prev, dup := r.aliases[norm]; dup && prev != f.Key {
				return nil, fmt.Errorf("alias %q maps to both %q and %q", a, prev, f.Key)
			}
			r.aliases[norm] = f.Key
		}
		if len(f.Values) > 0 {
			vm := make(map[string]string, len(f.Values))
			for raw, canon := range f.Values {
				vm[normalize(raw)] = canon
			}
			r.values[f.Key] = vm
		}
	}
	return r, nil
}

// normalize is the matching form for field names and value spellings:
// trimmed, lowercased.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Resolve maps a source field name onto its canonical key. The second
// return is false for unmapped names.
func (r *Registry) Resolve(name string) (string, bool) {
	key, ok := r.aliases[normalize(name)]
	return key, ok
}

// Spec returns the field declaration for a canonical key.
func (r *Registry) Spec(key string) (FieldSpec, bool) {
	f, ok := r.fields[key]
	return f, ok
}

// Policy returns the merge policy for a canonical key. Load guarantees
// every field's class is bound to a policy kind.
func (r *Registry) Policy(key string) models.PolicyKind {
	f, ok := r.fields[key]
	if !ok {
		return models.PolicyManualRequired
	}
	return r.policies[f.Class]
}

// CanonicalValue maps a source value spelling onto its canonical spelling.
// The second return reports whether an alias applied; spellings with no
// alias entry are treated literally.
func (r *Registry) CanonicalValue(key, raw string) (string, bool) {
	vm, ok := r.values[key]
	if !ok {
		return raw, false
	}
	canon, ok := vm[normalize(raw)]
	if !ok {
		return raw, false
	}
	return canon, true
}

// Keys returns the number of canonical keys, for startup logging.
func (r *Registry) Keys() int {
	return len(r.fields)
}
