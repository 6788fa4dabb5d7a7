package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/migratekit/intent-reconciler/internal/kb"
	"github.com/migratekit/intent-reconciler/internal/models"
	"github.com/migratekit/intent-reconciler/internal/registry"
)

const testRegistryDoc = `
version: test
fields:
  - key: compute.cpu_cores
    type: int
    class: resource-ceiling
    aliases: [cpu, cpus]
  - key: compute.memory_gb
    type: int
    class: resource-ceiling
    aliases: [memory, mem_gb]
  - key: compute.reserved_cpu_mhz
    type: float
    class: resource-floor
    aliases: [cpu_reservation]
  - key: environment
    type: enum
    class: identity
    enum: [dev, test, prod]
    aliases: [env]
    values:
      Production: prod
      PROD: prod
      Development: dev
  - key: approval.required
    type: bool
    class: safety-gate
    aliases: [needs_approval]
  - key: approval.level
    type: enum
    class: safety-gate
    enum: [none, lead, manager, cab]
    aliases: [approval_level]
  - key: tags
    type: list
    class: labels
    aliases: [labels]
  - key: display.name
    type: string
    class: display
    aliases: [name]
  - key: owner.team
    type: string
    class: ownership
    aliases: [team]
policies:
  resource-ceiling: maximum
  resource-floor: minimum
  safety-gate: most-restrictive
  labels: union
  identity: last-wins
  display: first-wins
  ownership: manual-required
`

const testKBDoc = `
version: test
capabilities:
  - tag: vm-provisioning
    target_equivalent: machine deployment manifest
    verdict_default: SUPPORTED
    required_context: [compute.cpu_cores, compute.memory_gb]
  - tag: tag-assignment
    target_equivalent: resource label assignment
    verdict_default: SUPPORTED
    caveats:
      - tag categories are flattened into plain labels
    required_context: [tags]
  - tag: approval-gate
    target_equivalent: pipeline manual-approval stage
    verdict_default: PARTIAL
    caveats:
      - multi-level approval chains collapse to a single gate
    required_context: [approval.required, environment]
  - tag: snapshot-policy
    target_equivalent: none; target has no snapshot scheduling
    verdict_default: MANUAL
    caveats:
      - schedule snapshots with an external backup product
`

func testEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	reg, err := registry.Parse([]byte(testRegistryDoc))
	require.NoError(t, err)
	knowledge, err := kb.Parse([]byte(testKBDoc))
	require.NoError(t, err)
	return New(reg, knowledge, opts)
}

func fv(typ models.FieldType, v interface{}) models.FieldValue {
	return models.FieldValue{Type: typ, Value: v}
}

func fvWhen(typ models.FieldType, v interface{}, when string) models.FieldValue {
	return models.FieldValue{Type: typ, Value: v, When: when}
}

func fvBounded(typ models.FieldType, v interface{}, min, max float64) models.FieldValue {
	return models.FieldValue{Type: typ, Value: v, Constraint: &models.Constraint{Min: &min, Max: &max}}
}

func rec(id string, fields map[string]models.FieldValue, caps ...string) models.SourceRecord {
	return models.SourceRecord{
		SourceID:     id,
		SourceKind:   "test",
		Fields:       fields,
		Capabilities: caps,
	}
}

func wl(name string, records ...models.SourceRecord) *models.Workload {
	return &models.Workload{Name: name, Records: records}
}
