// Package differ computes field-level deltas between candidate and existing
// records. Overwrite mode produces the minimal set of changed fields for a
// patch; combine mode merges the two records field by field.
package differ

import (
	"fmt"

	"github.com/weconnect/airbase/pkg/errors"
	"github.com/weconnect/airbase/pkg/records"
)

// Method selects how a candidate record is reduced against its matched
// existing record.
type Method string

const (
	// MethodOverwrite keeps only candidate fields that differ from the
	// existing record. The remote value is replaced wholesale.
	MethodOverwrite Method = "overwrite"
	// MethodCombine merges candidate and existing values: lists union,
	// strings concatenate, numbers sum.
	MethodCombine Method = "combine"
)

// Valid reports whether the method is one of the known modes.
func (m Method) Valid() bool {
	return m == MethodOverwrite || m == MethodCombine
}

// Override pairs a boolean flag field with the field it protects. When the
// flag is set on the existing record, the existing value is carried into
// the candidate before diffing so the remote-side manual edit survives.
type Override struct {
	RefField      string `json:"ref_field" yaml:"ref_field"`
	OverrideField string `json:"override_field" yaml:"override_field"`
}

// Differ compares candidate records against matched existing records.
type Differ interface {
	// Overwrite returns the minimal delta: a record carrying the existing
	// record's ID and exactly the candidate fields that differ.
	Overwrite(candidate, existing records.Record, filterFields []string) records.Record

	// Combine merges the two records field by field. The error reports
	// which field could not be combined; callers are expected to fall
	// back to the unmodified candidate.
	Combine(candidate, existing records.Record, joinFields []string) (records.Record, error)

	// Override copies protected existing values into the candidate for
	// every rule whose flag field is set. It mutates and returns the
	// candidate.
	Override(candidate, existing records.Record, overrides []Override) records.Record

	// Compare applies overrides then dispatches to the configured method.
	// A combine failure degrades to the unmodified candidate; any other
	// failure is returned and the caller must treat the record as a no-op.
	Compare(candidate, existing records.Record, method Method, overrides []Override, filterFields []string) (records.Record, error)
}

// differ is the default implementation of Differ.
type differ struct{}

// New creates a Differ.
func New() Differ {
	return &differ{}
}

// Overwrite keeps only the candidate fields that differ from the existing
// record. The result's ID is always the existing record's ID: the delta is
// a patch against the remote row, never a new row.
func (d *differ) Overwrite(candidate, existing records.Record, filterFields []string) records.Record {
	result := records.Record{ID: existing.ID, Fields: records.Fields{}}

	for _, name := range d.fieldNames(candidate, filterFields) {
		value, ok := candidate.Fields[name]
		if !ok {
			continue
		}

		existingValue, exists := existing.Fields[name]
		if !exists {
			// New on the candidate side: include only if it carries a value.
			if records.Truthy(value) {
				result.Fields[name] = value
			}
			continue
		}

		if elements, isList := records.List(value); isList {
			// Set difference as a presence test: any candidate element the
			// existing list lacks means the whole field is stale.
			if len(listDifference(elements, existingValue)) > 0 {
				result.Fields[name] = value
			}
			continue
		}

		if !records.EqualValues(value, existingValue) {
			result.Fields[name] = value
		}
	}
	return result
}

// Combine merges candidate and existing values. List values union with
// candidate order first, string values concatenate candidate-first, numeric
// values sum. Any missing or mismatched field fails the whole record.
func (d *differ) Combine(candidate, existing records.Record, joinFields []string) (records.Record, error) {
	result := records.Record{ID: existing.ID, Fields: records.Fields{}}

	for _, name := range d.fieldNames(candidate, joinFields) {
		value, ok := candidate.Fields[name]
		if !ok {
			return records.Record{}, &errors.CombineError{Field: name, Message: "field missing on candidate record"}
		}

		merged, err := combineValues(name, value, existing.Fields)
		if err != nil {
			return records.Record{}, err
		}
		result.Fields[name] = merged
	}
	return result, nil
}

// Override copies protected values from the existing record into the
// candidate. Rules apply independently and in order; a later rule may
// overwrite an earlier rule targeting the same field.
func (d *differ) Override(candidate, existing records.Record, overrides []Override) records.Record {
	for _, rule := range overrides {
		if records.Truthy(existing.Fields[rule.RefField]) {
			candidate.Fields[rule.OverrideField] = existing.Fields[rule.OverrideField]
		}
	}
	return candidate
}

// Compare applies overrides then dispatches on method. A failed combine
// falls back to the unmodified candidate, the documented best-effort
// policy. Unknown methods and malformed records return an error and the
// caller must skip the record.
func (d *differ) Compare(candidate, existing records.Record, method Method, overrides []Override, filterFields []string) (records.Record, error) {
	if !method.Valid() {
		return records.Record{}, &errors.ValidationError{
			Field:   "method",
			Value:   string(method),
			Message: "must be overwrite or combine",
		}
	}
	if candidate.Fields == nil || existing.Fields == nil {
		return records.Record{}, &errors.ValidationError{
			Field:   "fields",
			Message: "record without fields map",
		}
	}

	if len(overrides) > 0 {
		candidate = d.Override(candidate, existing, overrides)
	}

	switch method {
	case MethodCombine:
		combined, err := d.Combine(candidate, existing, filterFields)
		if err != nil {
			// Fall back to the candidate unchanged rather than dropping it.
			return candidate, nil
		}
		return combined, nil
	default:
		return d.Overwrite(candidate, existing, filterFields), nil
	}
}

// fieldNames returns the explicit field list or all candidate fields.
func (d *differ) fieldNames(candidate records.Record, explicit []string) []string {
	if len(explicit) > 0 {
		return explicit
	}
	names := make([]string, 0, len(candidate.Fields))
	for name := range candidate.Fields {
		names = append(names, name)
	}
	return names
}

// listDifference returns the candidate elements whose identity does not
// appear in the existing value's elements.
func listDifference(candidate []any, existingValue any) []any {
	existingIDs := make(map[string]struct{})
	if elements, ok := records.List(existingValue); ok {
		for _, el := range elements {
			existingIDs[records.Identity(el)] = struct{}{}
		}
	}

	var diff []any
	for _, el := range candidate {
		if _, ok := existingIDs[records.Identity(el)]; !ok {
			diff = append(diff, el)
		}
	}
	return diff
}

// combineValues merges one candidate value with its existing counterpart.
func combineValues(name string, value any, existing records.Fields) (any, error) {
	if elements, isList := records.List(value); isList {
		existingValue, ok := existing[name]
		if !ok {
			return nil, &errors.CombineError{Field: name, Message: "field missing on existing record"}
		}
		existingElements, ok := records.List(existingValue)
		if !ok {
			return nil, &errors.CombineError{Field: name, Message: "existing value is not a list"}
		}

		seen := make(map[string]struct{}, len(elements))
		merged := make([]any, 0, len(elements)+len(existingElements))
		for _, el := range elements {
			seen[records.Identity(el)] = struct{}{}
			merged = append(merged, el)
		}
		for _, el := range existingElements {
			if _, ok := seen[records.Identity(el)]; !ok {
				merged = append(merged, el)
			}
		}
		return merged, nil
	}

	switch v := value.(type) {
	case string:
		existingValue, ok := existing[name].(string)
		if !ok {
			return nil, &errors.CombineError{Field: name, Message: fmt.Sprintf("cannot join string with %T", existing[name])}
		}
		return v + ", " + existingValue, nil
	case int, int32, int64, float32, float64:
		sum, err := sumNumbers(v, existing[name])
		if err != nil {
			return nil, &errors.CombineError{Field: name, Message: err.Error(), Err: err}
		}
		return sum, nil
	default:
		// Booleans and anything else: candidate wins.
		return value, nil
	}
}

// sumNumbers adds two numeric values, tolerating mixed int/float shapes.
func sumNumbers(a, b any) (float64, error) {
	af, ok := toFloat(a)
	if !ok {
		return 0, fmt.Errorf("%T is not numeric", a)
	}
	bf, ok := toFloat(b)
	if !ok {
		return 0, fmt.Errorf("%T is not numeric", b)
	}
	return af + bf, nil
}

func toFloat(v any) (float64, bool) {
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
