package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/migratekit/intent-reconciler/internal/models"
)

const testDoc = `
version: "1"
fields:
  - key: compute.cpu_cores
    type: int
    class: resource-ceiling
    aliases: [cpu, CPUs]
  - key: environment
    type: enum
    class: identity
    enum: [dev, prod]
    aliases: [env]
    values:
      Production: prod
      PROD: prod
policies:
  resource-ceiling: maximum
  identity: last-wins
`

func TestParseAndResolve(t *testing.T) {
	r, err := Parse([]byte(testDoc))
	require.NoError(t, err)
	require.Equal(t, 2, r.Keys())

	tests := []struct {
		name   string
		expect string
		mapped bool
	}{
		{"cpu", "compute.cpu_cores", true},
		{"CPU", "compute.cpu_cores", true},
		{" cpus ", "compute.cpu_cores", true},
		{"compute.cpu_cores", "compute.cpu_cores", true},
		{"env", "environment", true},
		{"gpu_count", "", false},
	}
	for _, tc := range tests {
		key, ok := r.Resolve(tc.name)
		assert.Equal(t, tc.mapped, ok, "Resolve(%q)", tc.name)
		assert.Equal(t, tc.expect, key, "Resolve(%q)", tc.name)
	}
}

func TestCanonicalValue(t *testing.T) {
	r, err := Parse([]byte(testDoc))
	require.NoError(t, err)

	v, applied := r.CanonicalValue("environment", "Production")
	assert.True(t, applied)
	assert.Equal(t, "prod", v)

	// Spelling matching is case-insensitive.
	v, applied = r.CanonicalValue("environment", "pRoD")
	assert.True(t, applied)
	assert.Equal(t, "prod", v)

	// No alias entry: treat literally.
	v, applied = r.CanonicalValue("environment", "dev")
	assert.False(t, applied)
	assert.Equal(t, "dev", v)

	v, applied = r.CanonicalValue("compute.cpu_cores", "8")
	assert.False(t, applied)
	assert.Equal(t, "8", v)
}

func TestPolicy(t *testing.T) {
	r, err := Parse([]byte(testDoc))
	require.NoError(t, err)
	assert.Equal(t, models.PolicyMaximum, r.Policy("compute.cpu_cores"))
	assert.Equal(t, models.PolicyLastWins, r.Policy("environment"))
	// Unregistered keys never auto-merge.
	assert.Equal(t, models.PolicyManualRequired, r.Policy("nope"))
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"duplicate key", `
fields:
  - {key: a, type: int, class: c}
  - {key: a, type: int, class: c}
policies: {c: maximum}
`},
		{"unknown policy kind", `
fields:
  - {key: a, type: int, class: c}
policies: {c: middle-out}
`},
		{"class without policy", `
fields:
  - {key: a, type: int, class: missing}
policies: {c: maximum}
`},
		{"bad type", `
fields:
  - {key: a, type: decimal, class: c}
policies: {c: maximum}
`},
		{"alias collision", `
fields:
  - {key: a, type: int, class: c, aliases: [x]}
  - {key: b, type: int, class: c, aliases: [X]}
policies: {c: maximum}
`},
		{"no fields", `
fields: []
policies: {c: maximum}
`},
		{"numeric policy on text field", `
fields:
  - {key: a, type: string, class: c}
policies: {c: maximum}
`},
		{"numeric policy on list field", `
fields:
  - {key: a, type: list, class: c}
policies: {c: minimum}
`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			assert.Error(t, err)
		})
	}
}
