package notifications

import (
	"fmt"
	"strings"
)

// Interpolate replaces every {name} placeholder whose variable holds a
// string or numeric value. Missing or non-scalar variables leave the
// placeholder verbatim so partial variable sets degrade gracefully.
// Replacement values are inserted literally, so the function is idempotent
// over its own output.
func Interpolate(pattern string, variables map[string]any) string {
	if len(variables) == 0 || !strings.Contains(pattern, "{") {
		return pattern
	}

	out := pattern
	for name, value := range variables {
		s, ok := scalarString(value)
		if !ok {
			continue
		}
		out = strings.ReplaceAll(out, "{"+name+"}", s)
	}
	return out
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case int:
		return fmt.Sprintf("%d", val), true
	case int32:
		return fmt.Sprintf("%d", val), true
	case int64:
		return fmt.Sprintf("%d", val), true
	case float32:
		return trimFloat(float64(val)), true
	case float64:
		return trimFloat(val), true
	default:
		return "", false
	}
}

// trimFloat renders whole floats without a decimal point so counts that
// crossed a JSON boundary read as integers.
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
