package form

import "strconv"

// ValueSet holds the in-progress answers of a form keyed by field name or derived key.
// Updates never mutate an existing set; With returns a new one.
type ValueSet map[string]any

// Clone returns a shallow copy; string slices are copied so the clone shares nothing mutable
func (v ValueSet) Clone() ValueSet {
	out := make(ValueSet, len(v)+1)
	for k, val := range v {
		if list, ok := val.([]string); ok {
			val = append([]string(nil), list...)
		}
		out[k] = val
	}
	return out
}

// With returns a copy of the set with exactly one key changed
func (v ValueSet) With(key string, value any) ValueSet {
	out := v.Clone()
	out[key] = value
	return out
}

// String reads a text value, defaulting to empty
func (v ValueSet) String(key string) string {
	switch val := v[key].(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

// Bool reads a boolean value, defaulting to false
func (v ValueSet) Bool(key string) bool {
	switch val := v[key].(type) {
	case bool:
		return val
	case string:
		b, _ := strconv.ParseBool(val)
		return b
	default:
		return false
	}
}

// Strings reads a list value, defaulting to an empty list
func (v ValueSet) Strings(key string) []string {
	switch val := v[key].(type) {
	case []string:
		return append([]string{}, val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}
