package records

import (
	"fmt"
	"reflect"
	"strings"
)

// Truthy reports whether a field value counts as present for matching and
// diffing purposes. Empty strings, zero numbers, false, nil, and empty
// lists are all absent.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case []Attachment:
		return len(v) > 0
	case []map[string]any:
		return len(v) > 0
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map {
			return rv.Len() > 0
		}
		return true
	}
}

// List returns the elements of a list-valued field and whether the value
// is list-shaped at all.
func List(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []Attachment:
		out := make([]any, len(v))
		for i, a := range v {
			out[i] = a
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

// Identity derives a comparable identity for a list element. Attachment-like
// elements (anything carrying a URL) are identified by the trailing path
// segment of that URL, so re-hosted copies of the same file compare equal.
// Everything else is identified by its printed value.
func Identity(element any) string {
	switch v := element.(type) {
	case Attachment:
		return urlTail(v.URL)
	case *Attachment:
		return urlTail(v.URL)
	case map[string]any:
		if u, ok := v["url"].(string); ok {
			return urlTail(u)
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// urlTail returns the trailing path segment of a URL.
func urlTail(u string) string {
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}

// EqualValues compares two field values for the differ's scalar test.
// Numbers compare across int and float representations since JSON decoding
// yields float64 while caller-built records often carry int.
func EqualValues(a, b any) bool {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return af == bf
		}
		return false
	}
	if la, ok := List(a); ok {
		lb, okb := List(b)
		if !okb || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if Identity(la[i]) != Identity(lb[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// asFloat converts numeric values to float64 for comparison.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
