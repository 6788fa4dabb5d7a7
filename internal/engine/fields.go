package engine

import (
	"encoding/json"
	"fmt"
	"sort"
)

// toFloat converts the numeric types a decoded record can carry.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// isIntegral reports whether a numeric value has no fractional part.
func isIntegral(v interface{}) bool {
	f, ok := toFloat(v)
	if !ok {
		return false
	}
	return f == float64(int64(f))
}

// stringList extracts a []string from a decoded list value.
func stringList(v interface{}) ([]string, bool) {
	switch l := v.(type) {
	case []string:
		out := make([]string, len(l))
		copy(out, l)
		return out, true
	case []interface{}:
		out := make([]string, 0, len(l))
		for _, e := range l {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// valueString renders a value for rationale and error text.
func valueString(v interface{}) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", v)
}

// equalValues compares two field values by identity: numerically for
// numbers, element-wise (order-insensitive) for lists, directly otherwise.
func equalValues(a, b interface{}) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	if al, ok := stringList(a); ok {
		bl, ok := stringList(b)
		if !ok || len(al) != len(bl) {
			return false
		}
		sort.Strings(al)
		sort.Strings(bl)
		for i := range al {
			if al[i] != bl[i] {
				return false
			}
		}
		return true
	}
	return valueString(a) == valueString(b)
}
