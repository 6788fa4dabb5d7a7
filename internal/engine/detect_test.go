package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/migratekit/intent-reconciler/internal/models"
)

func TestDetectAliasedSpellingsProduceNoFindings(t *testing.T) {
	e := testEngine(t, Options{})
	// "Production" and "PROD" both alias to canonical "prod"; the
	// declared string/enum split is not a type mismatch either.
	preview := e.PreviewWorkload(wl("web",
		rec("ansible-play", map[string]models.FieldValue{
			"env": fv(models.TypeString, "Production"),
		}),
		rec("vra-blueprint", map[string]models.FieldValue{
			"environment": fv(models.TypeEnum, "PROD"),
		}),
	), nil)

	assert.Empty(t, preview.Findings)
	assert.Empty(t, preview.ValidationErrors)
	assert.Empty(t, preview.Unmapped)
}

func TestDetectNamingOnly(t *testing.T) {
	e := testEngine(t, Options{})
	preview := e.PreviewWorkload(wl("web",
		rec("a", map[string]models.FieldValue{
			"name": fv(models.TypeString, "Web-Frontend"),
		}),
		rec("b", map[string]models.FieldValue{
			"display.name": fv(models.TypeString, "web-frontend"),
		}),
	), nil)

	require.Len(t, preview.Findings, 1)
	f := preview.Findings[0]
	assert.Equal(t, "display.name", f.FieldKey)
	assert.Equal(t, models.ConflictNamingOnly, f.Kind)
	assert.Equal(t, models.SeverityInfo, f.Severity)
	assert.Equal(t, []string{"a", "b"}, f.Sources)
}

func TestDetectTypeMismatch(t *testing.T) {
	e := testEngine(t, Options{})
	preview := e.PreviewWorkload(wl("web",
		rec("a", map[string]models.FieldValue{
			"environment": fv(models.TypeInt, 1),
		}),
		rec("b", map[string]models.FieldValue{
			"environment": fv(models.TypeEnum, "prod"),
		}),
	), nil)

	require.Len(t, preview.Findings, 1)
	f := preview.Findings[0]
	assert.Equal(t, models.ConflictTypeMismatch, f.Kind)
	assert.Equal(t, models.SeverityBlocking, f.Severity)
}

func TestDetectValueDrift(t *testing.T) {
	records := []models.SourceRecord{
		rec("a", map[string]models.FieldValue{
			"memory": fv(models.TypeInt, 16),
		}),
		rec("b", map[string]models.FieldValue{
			"compute.memory_gb": fv(models.TypeInt, 32),
		}),
	}

	e := testEngine(t, Options{})
	preview := e.PreviewWorkload(wl("web", records...), nil)
	require.Len(t, preview.Findings, 1)
	f := preview.Findings[0]
	assert.Equal(t, models.ConflictValueDrift, f.Kind)
	assert.Equal(t, models.SeverityInfo, f.Severity)
	assert.Equal(t, []interface{}{16, 32}, f.Values)

	// 16 vs 32 is a 50% relative spread; a tolerance above that
	// silences the finding.
	tolerant := testEngine(t, Options{DriftTolerance: 0.6})
	preview = tolerant.PreviewWorkload(wl("web", records...), nil)
	assert.Empty(t, preview.Findings)
}

func TestDetectConstraintIncompatible(t *testing.T) {
	e := testEngine(t, Options{})
	lowMax := 8.0
	highMin := 16.0
	preview := e.PreviewWorkload(wl("web",
		rec("a", map[string]models.FieldValue{
			"cpu": {Type: models.TypeInt, Value: 8, Constraint: &models.Constraint{Max: &lowMax}},
		}),
		rec("b", map[string]models.FieldValue{
			"cpu": {Type: models.TypeInt, Value: 16, Constraint: &models.Constraint{Min: &highMin}},
		}),
	), nil)

	require.NotEmpty(t, preview.Findings)
	f := preview.Findings[0]
	assert.Equal(t, models.ConflictConstraintIncompatible, f.Kind)
	assert.Equal(t, models.SeverityBlocking, f.Severity)
	assert.Contains(t, f.Detail, "mutually exclusive")
}

func TestDetectSingleSourceHasNothingToCompare(t *testing.T) {
	e := testEngine(t, Options{})
	preview := e.PreviewWorkload(wl("web",
		rec("only", map[string]models.FieldValue{
			"cpu":         fv(models.TypeInt, 4),
			"environment": fv(models.TypeEnum, "dev"),
		}),
	), nil)
	assert.Empty(t, preview.Findings)
}

func TestDetectOrderingIsStable(t *testing.T) {
	e := testEngine(t, Options{})
	build := func() *models.Workload {
		return wl("web",
			rec("a", map[string]models.FieldValue{
				"memory": fv(models.TypeInt, 16),
				"cpu":    fv(models.TypeInt, 4),
			}),
			rec("b", map[string]models.FieldValue{
				"memory": fv(models.TypeInt, 32),
				"cpu":    fv(models.TypeInt, 8),
			}),
		)
	}
	first := e.PreviewWorkload(build(), nil)
	second := e.PreviewWorkload(build(), nil)
	require.Equal(t, first.Findings, second.Findings)

	// Sorted by canonical key: cpu_cores before memory_gb.
	require.Len(t, first.Findings, 2)
	assert.Equal(t, "compute.cpu_cores", first.Findings[0].FieldKey)
	assert.Equal(t, "compute.memory_gb", first.Findings[1].FieldKey)
}
