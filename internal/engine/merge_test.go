package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/migratekit/intent-reconciler/internal/models"
)

func TestMergeMaximumWithConstraintBounds(t *testing.T) {
	e := testEngine(t, Options{})
	result := e.ReconcileWorkload(wl("web",
		rec("a", map[string]models.FieldValue{
			"cpu": fvBounded(models.TypeInt, 4, 1, 8),
		}),
		rec("b", map[string]models.FieldValue{
			"cpu": fvBounded(models.TypeInt, 8, 2, 16),
		}),
	), nil)

	field := result.Intent.Field("compute.cpu_cores")
	require.NotNil(t, field)
	require.Len(t, field.Values, 1)
	rv := field.Values[0]
	assert.Equal(t, int64(8), rv.Value)
	assert.Equal(t, []string{"a", "b"}, rv.Sources)

	// Unified bound admits every source's stated need: lowest floor,
	// highest ceiling.
	require.NotNil(t, rv.Constraint)
	assert.Equal(t, 1.0, *rv.Constraint.Min)
	assert.Equal(t, 16.0, *rv.Constraint.Max)

	require.Len(t, result.Intent.Ledger, 1)
	entry := result.Intent.Ledger[0]
	assert.Equal(t, models.PolicyMaximum, entry.Policy)
	assert.Equal(t, int64(8), entry.Chosen)
	require.Len(t, entry.Contributions, 2)
	assert.Equal(t, "a", entry.Contributions[0].SourceID)
	assert.Equal(t, 4, entry.Contributions[0].Value)
}

func TestMergeAliasedEnumToCanonicalValue(t *testing.T) {
	e := testEngine(t, Options{})
	result := e.ReconcileWorkload(wl("web",
		rec("a", map[string]models.FieldValue{
			"env": fv(models.TypeString, "Production"),
		}),
		rec("b", map[string]models.FieldValue{
			"environment": fv(models.TypeEnum, "PROD"),
		}),
	), nil)

	assert.Empty(t, result.Findings)
	field := result.Intent.Field("environment")
	require.NotNil(t, field)
	require.Len(t, field.Values, 1)
	assert.Equal(t, "prod", field.Values[0].Value)
	assert.Equal(t, models.TypeEnum, field.Values[0].Type)
}

func TestMergeConditionalValuesStaySeparate(t *testing.T) {
	e := testEngine(t, Options{})
	result := e.ReconcileWorkload(wl("web",
		rec("a", map[string]models.FieldValue{
			"needs_approval": fvWhen(models.TypeBool, false, "environment=dev"),
		}),
		rec("b", map[string]models.FieldValue{
			"approval.required": fvWhen(models.TypeBool, true, "environment=prod"),
		}),
	), nil)

	assert.Empty(t, result.Findings)
	field := result.Intent.Field("approval.required")
	require.NotNil(t, field)
	require.Len(t, field.Values, 2, "condition-scoped values must not collapse")
	assert.Equal(t, "environment=dev", field.Values[0].When)
	assert.Equal(t, false, field.Values[0].Value)
	assert.Equal(t, "environment=prod", field.Values[1].When)
	assert.Equal(t, true, field.Values[1].Value)
}

func TestMergeMostRestrictive(t *testing.T) {
	e := testEngine(t, Options{})
	result := e.ReconcileWorkload(wl("web",
		rec("a", map[string]models.FieldValue{
			"needs_approval": fv(models.TypeBool, false),
			"approval_level": fv(models.TypeEnum, "lead"),
		}),
		rec("b", map[string]models.FieldValue{
			"approval.required": fv(models.TypeBool, true),
			"approval.level": fv(models.TypeEnum, "cab"),
		}),
	), nil)

	required := result.Intent.Field("approval.required")
	require.NotNil(t, required)
	assert.Equal(t, true, required.Values[0].Value, "true is the safer option")

	level := result.Intent.Field("approval.level")
	require.NotNil(t, level)
	assert.Equal(t, "cab", level.Values[0].Value, "highest-restriction member wins")
}

func TestMergeUnionDeduplicates(t *testing.T) {
	e := testEngine(t, Options{})
	result := e.ReconcileWorkload(wl("web",
		rec("a", map[string]models.FieldValue{
			"labels": fv(models.TypeList, []interface{}{"web", "linux"}),
		}),
		rec("b", map[string]models.FieldValue{
			"tags": fv(models.TypeList, []interface{}{"linux", "prod-ready"}),
		}),
	), nil)

	field := result.Intent.Field("tags")
	require.NotNil(t, field)
	assert.Equal(t, []string{"linux", "prod-ready", "web"}, field.Values[0].Value)
}

func TestMergeManualRequiredEscalates(t *testing.T) {
	e := testEngine(t, Options{})
	result := e.ReconcileWorkload(wl("web",
		rec("a", map[string]models.FieldValue{
			"team": fv(models.TypeString, "platform"),
		}),
		rec("b", map[string]models.FieldValue{
			"owner.team": fv(models.TypeString, "storage"),
		}),
	), nil)

	assert.Nil(t, result.Intent.Field("owner.team"))
	require.Len(t, result.Intent.Unresolved, 1)
	f := result.Intent.Unresolved[0]
	assert.Equal(t, models.ConflictManualRequired, f.Kind)
	assert.Equal(t, models.SeverityBlocking, f.Severity)
	assert.True(t, result.Intent.NeedsResolution)
}

func TestMergeManualRequiredAgreementResolves(t *testing.T) {
	e := testEngine(t, Options{})
	result := e.ReconcileWorkload(wl("web",
		rec("a", map[string]models.FieldValue{
			"team": fv(models.TypeString, "platform"),
		}),
		rec("b", map[string]models.FieldValue{
			"owner.team": fv(models.TypeString, "platform"),
		}),
	), nil)

	field := result.Intent.Field("owner.team")
	require.NotNil(t, field)
	assert.Equal(t, "platform", field.Values[0].Value)
	assert.False(t, result.Intent.NeedsResolution)
}

func TestMergeFirstAndLastWinsFollowImportOrder(t *testing.T) {
	e := testEngine(t, Options{})
	a := rec("a", map[string]models.FieldValue{
		"name": fv(models.TypeString, "frontend"),
		"env": fv(models.TypeString, "dev"),
	})
	b := rec("b", map[string]models.FieldValue{
		"display.name": fv(models.TypeString, "Frontend"),
		"environment": fv(models.TypeString, "prod"),
	})

	forward := e.ReconcileWorkload(wl("web", a, b), nil)
	assert.Equal(t, "frontend", forward.Intent.Field("display.name").Values[0].Value)
	assert.Equal(t, "prod", forward.Intent.Field("environment").Values[0].Value)

	// Reversing import order flips the outcome, deterministically.
	reversed := e.ReconcileWorkload(wl("web", b, a), nil)
	assert.Equal(t, "Frontend", reversed.Intent.Field("display.name").Values[0].Value)
	assert.Equal(t, "dev", reversed.Intent.Field("environment").Values[0].Value)
}

func TestMergeCommutativePolicies(t *testing.T) {
	e := testEngine(t, Options{})
	a := rec("a", map[string]models.FieldValue{
		"cpu": fv(models.TypeInt, 4),
		"cpu_reservation": fv(models.TypeFloat, 1200.0),
		"labels": fv(models.TypeList, []interface{}{"web"}),
		"needs_approval": fv(models.TypeBool, true),
	})
	b := rec("b", map[string]models.FieldValue{
		"cpus": fv(models.TypeInt, 8),
		"cpu_reservation": fv(models.TypeFloat, 800.0),
		"tags": fv(models.TypeList, []interface{}{"linux"}),
		"approval.required": fv(models.TypeBool, false),
	})

	forward := e.ReconcileWorkload(wl("web", a, b), nil)
	reversed := e.ReconcileWorkload(wl("web", b, a), nil)

	for _, key := range []string{"compute.cpu_cores", "compute.reserved_cpu_mhz", "tags", "approval.required"} {
		assert.Equal(t,
			forward.Intent.Field(key).Values[0].Value,
			reversed.Intent.Field(key).Values[0].Value,
			"policy for %s must not depend on input order", key)
	}
	assert.Equal(t, int64(8), forward.Intent.Field("compute.cpu_cores").Values[0].Value)
	assert.Equal(t, 800.0, forward.Intent.Field("compute.reserved_cpu_mhz").Values[0].Value)
}

func TestMergeIdempotent(t *testing.T) {
	e := testEngine(t, Options{})
	build := func() *models.Workload {
		return wl("web",
			rec("a", map[string]models.FieldValue{
				"cpu": fv(models.TypeInt, 4),
				"env": fv(models.TypeString, "Production"),
				"labels": fv(models.TypeList, []interface{}{"web"}),
				"needs_approval": fv(models.TypeBool, true),
				"custom_attr": fv(models.TypeString, "x"),
			}, "vm-provisioning", "tag-assignment"),
			rec("b", map[string]models.FieldValue{
				"cpus": fv(models.TypeInt, 8),
				"environment": fv(models.TypeEnum, "PROD"),
				"team": fv(models.TypeString, "platform"),
			}, "vm-provisioning", "approval-gate"),
		)
	}

	first := e.ReconcileWorkload(build(), nil)
	second := e.ReconcileWorkload(build(), nil)

	firstJSON, err := json.Marshal(first.Intent)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second.Intent)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON, "same inputs must produce a byte-identical intent")
}

func TestMergeNoSilentLoss(t *testing.T) {
	e := testEngine(t, Options{})
	result := e.ReconcileWorkload(wl("web",
		rec("a", map[string]models.FieldValue{
			"cpu": fv(models.TypeInt, 4),
			"team": fv(models.TypeString, "platform"),
			"undocumented": fv(models.TypeString, "keepme"),
		}),
		rec("b", map[string]models.FieldValue{
			"cpus": fv(models.TypeInt, 8),
			"team": fv(models.TypeString, "storage"),
		}),
	), nil)

	// Resolved, unresolved, or unmapped: every input field surfaces.
	assert.NotNil(t, result.Intent.Field("compute.cpu_cores"))

	require.Len(t, result.Intent.Unresolved, 1)
	assert.Equal(t, "owner.team", result.Intent.Unresolved[0].FieldKey)

	require.Len(t, result.Intent.Unmapped, 1)
	assert.Equal(t, "undocumented", result.Intent.Unmapped[0].Name)
	assert.Equal(t, "a", result.Intent.Unmapped[0].SourceID)
	assert.Equal(t, "keepme", result.Intent.Unmapped[0].Value)
}

func TestMergeExcludesInvalidRecordWithoutAbortingBatch(t *testing.T) {
	e := testEngine(t, Options{})
	result := e.ReconcileWorkload(wl("web",
		rec("good", map[string]models.FieldValue{
			"cpu": fv(models.TypeInt, 4),
		}),
		rec("bad", map[string]models.FieldValue{
			"cpu": fv(models.TypeInt, "four"),
		}),
	), nil)

	assert.Equal(t, []string{"bad"}, result.ExcludedSources)
	require.Len(t, result.ValidationErrors, 1)
	assert.Equal(t, "compute.cpu_cores", result.ValidationErrors[0].FieldKey)
	assert.Equal(t, "integer", result.ValidationErrors[0].Expected)

	// The surviving record still merges.
	field := result.Intent.Field("compute.cpu_cores")
	require.NotNil(t, field)
	assert.Equal(t, int64(4), field.Values[0].Value)
	assert.Equal(t, []string{"good"}, field.Values[0].Sources)
}

func TestMergeDuplicateAliasesWithinOneRecord(t *testing.T) {
	e := testEngine(t, Options{})
	// cpu and cpus both alias to compute.cpu_cores; both contributions
	// must survive into the finding and the ledger.
	result := e.ReconcileWorkload(wl("web",
		rec("a", map[string]models.FieldValue{
			"cpu":  fv(models.TypeInt, 4),
			"cpus": fv(models.TypeInt, 8),
		}),
	), nil)

	require.Len(t, result.Findings, 1)
	f := result.Findings[0]
	assert.Equal(t, models.ConflictValueDrift, f.Kind)
	assert.Equal(t, "compute.cpu_cores", f.FieldKey)
	assert.Equal(t, []interface{}{4, 8}, f.Values)

	field := result.Intent.Field("compute.cpu_cores")
	require.NotNil(t, field)
	assert.Equal(t, int64(8), field.Values[0].Value)

	require.Len(t, result.Intent.Ledger, 1)
	entry := result.Intent.Ledger[0]
	require.Len(t, entry.Contributions, 2)
	assert.Equal(t, 4, entry.Contributions[0].Value)
	assert.Equal(t, 8, entry.Contributions[1].Value)
}

func TestMergeBlockingConflictGoesUnresolved(t *testing.T) {
	e := testEngine(t, Options{})
	result := e.ReconcileWorkload(wl("web",
		rec("a", map[string]models.FieldValue{
			"environment": fv(models.TypeInt, 1),
		}),
		rec("b", map[string]models.FieldValue{
			"environment": fv(models.TypeEnum, "prod"),
		}),
	), nil)

	assert.Nil(t, result.Intent.Field("environment"))
	require.Len(t, result.Intent.Unresolved, 1)
	assert.Equal(t, models.ConflictTypeMismatch, result.Intent.Unresolved[0].Kind)
	assert.True(t, result.Intent.NeedsResolution)
}
