// Package kb loads the capability knowledge base: static reference data
// mapping each capability tag to its nearest target-platform equivalent,
// a default readiness verdict, known caveats, and the context fields the
// classifier needs to hold the default verdict. Versioned independently of
// the engine and loaded whole at run start.
package kb

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/migratekit/intent-reconciler/internal/models"
)

// Entry describes one capability's target-platform equivalent.
type Entry struct {
	Tag              string         `yaml:"tag" validate:"required"`
	TargetEquivalent string         `yaml:"target_equivalent" validate:"required"`
	VerdictDefault   models.Verdict `yaml:"verdict_default" validate:"required,oneof=SUPPORTED PARTIAL BLOCKED MANUAL"`
	Caveats          []string       `yaml:"caveats,omitempty"`
	RequiredContext  []string       `yaml:"required_context,omitempty"`
}

// Document is the on-disk knowledge base format.
type Document struct {
	Version      string  `yaml:"version"`
	Capabilities []Entry `yaml:"capabilities" validate:"required,min=1,dive"`
}

// KnowledgeBase is the loaded, indexed capability table. Read-only for the
// duration of a run.
type KnowledgeBase struct {
	Version string
	entries map[string]Entry
}

// Load reads and indexes a knowledge base from a YAML file.
func Load(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	k, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return k, nil
}

// Parse builds a KnowledgeBase from YAML bytes, rejecting malformed
// documents and duplicate tags.
func Parse(data []byte) (*KnowledgeBase, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&doc); err != nil {
		return nil, err
	}
	k := &KnowledgeBase{
		Version: doc.Version,
		entries: make(map[string]Entry, len(doc.Capabilities)),
	}
	for _, e := range doc.Capabilities {
		if _, dup := k.entries[e.Tag]; dup {
			return nil, fmt.Errorf("duplicate capability tag %q", e.Tag)
		}
		k.entries[e.Tag] = e
	}
	return k, nil
}

// Lookup returns the entry for a capability tag. The second return is
// false for unknown tags; the classifier turns those into MANUAL verdicts,
// never into silent SUPPORTED.
func (k *KnowledgeBase) Lookup(tag string) (Entry, bool) {
	e, ok := k.entries[tag]
	return e, ok
}

// Size returns the number of entries, for startup logging.
func (k *KnowledgeBase) Size() int {
	return len(k.entries)
}
