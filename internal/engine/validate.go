package engine

import (
	"fmt"
	"regexp"

	"github.com/migratekit/intent-reconciler/internal/models"
)

// validateRecord checks every canonical field value against its declared
// type and constraint, and against the registry's enum domain where one is
// declared. It never coerces; a mismatch is reported and the caller
// decides what to exclude. Pure function.
func (e *Engine) validateRecord(rec canonicalRecord) []models.ValidationError {
	var errs []models.ValidationError
	for _, gk := range rec.Keys {
		for _, inst := range rec.Fields[gk] {
			errs = append(errs, e.validateField(rec.SourceID, gk.Key, inst.Value)...)
		}
	}
	return errs
}

func (e *Engine) validateField(sourceID, key string, fv models.FieldValue) []models.ValidationError {
	var errs []models.ValidationError
	fail := func(expected string) {
		errs = append(errs, models.ValidationError{
			SourceID: sourceID,
			FieldKey: key,
			Expected: expected,
			Actual:   valueString(fv.Value),
		})
	}

	switch fv.Type {
	case models.TypeString, models.TypeEnum:
		if _, ok := fv.Value.(string); !ok {
			fail(string(fv.Type))
			return errs
		}
	case models.TypeInt:
		if _, ok := toFloat(fv.Value); !ok || !isIntegral(fv.Value) {
			fail("integer")
			return errs
		}
	case models.TypeFloat:
		if _, ok := toFloat(fv.Value); !ok {
			fail("number")
			return errs
		}
	case models.TypeBool:
		if _, ok := fv.Value.(bool); !ok {
			fail("boolean")
			return errs
		}
	case models.TypeList:
		if _, ok := stringList(fv.Value); !ok {
			fail("list of strings")
			return errs
		}
	default:
		fail("one of string/int/float/bool/enum/list")
		return errs
	}

	if c := fv.Constraint; c != nil {
		if f, ok := toFloat(fv.Value); ok {
			if c.Min != nil && f < *c.Min {
				fail(fmt.Sprintf(">= %v", *c.Min))
			}
			if c.Max != nil && f > *c.Max {
				fail(fmt.Sprintf("<= %v", *c.Max))
			}
		}
		if s, ok := fv.Value.(string); ok {
			if len(c.Enum) > 0 && !containsString(c.Enum, s) {
				fail(fmt.Sprintf("one of %v", c.Enum))
			}
			if c.Pattern != "" {
				re, err := regexp.Compile(c.Pattern)
				if err != nil {
					fail("valid pattern constraint: " + c.Pattern)
				} else if !re.MatchString(s) {
					fail("match for pattern " + c.Pattern)
				}
			}
		}
	}

	// Registry enum domain, checked after value aliasing so canonical
	// spellings of the same member pass.
	if spec, ok := e.reg.Spec(key); ok && spec.Type == models.TypeEnum && len(spec.Enum) > 0 {
		if s, ok := fv.Value.(string); ok && !containsString(spec.Enum, s) {
			fail(fmt.Sprintf("one of %v", spec.Enum))
		}
	}
	return errs
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
