// Package records defines the record model shared by the airtable client
// and the reconciliation engine: key-value records with an optional remote
// ID, hashable primary keys, and shape validation.
package records

import (
	"strings"

	"github.com/weconnect/airbase/pkg/errors"
)

// recordIDLength is the length of an Airtable record identifier.
const recordIDLength = 17

// recordIDPrefix is the fixed prefix of an Airtable record identifier.
const recordIDPrefix = "rec"

// Fields maps field names to values. Values are strings, numbers, booleans,
// lists of strings (links or multi-select), lists of attachment objects, or nil.
type Fields map[string]any

// Record is a single row in a table. ID is empty for records that have not
// been created on the remote collection yet.
type Record struct {
	ID     string `json:"id,omitempty"`
	Fields Fields `json:"fields"`
}

// New creates a record with no remote ID.
func New(fields Fields) Record {
	return Record{Fields: fields}
}

// HasID reports whether the record is known to the remote collection.
func (r Record) HasID() bool {
	return r.ID != ""
}

// Clone returns a copy of the record with its own fields map.
// Field values are shared; callers that mutate list values must copy them.
func (r Record) Clone() Record {
	fields := make(Fields, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Record{ID: r.ID, Fields: fields}
}

// IsRecordID reports whether a value looks like a record ID or a list of
// record IDs. Airtable IDs are 17 characters with a fixed "rec" prefix.
func IsRecordID(value any) bool {
	if list, ok := value.([]any); ok && len(list) > 0 {
		value = list[0]
	}
	if list, ok := value.([]string); ok && len(list) > 0 {
		value = list[0]
	}
	s, ok := value.(string)
	return ok && len(s) == recordIDLength && strings.HasPrefix(s, recordIDPrefix)
}

// ValidateForCreate checks that a record may be sent to a create operation.
// Records headed for create must not carry a remote ID.
func ValidateForCreate(r Record) error {
	if r.Fields == nil {
		return &errors.ValidationError{Field: "fields", Message: "missing fields map"}
	}
	if r.HasID() {
		return &errors.ValidationError{Field: "id", Value: r.ID, Message: "create forbids a record ID"}
	}
	return nil
}

// ValidateForUpdate checks that a record may be sent to an update operation.
func ValidateForUpdate(r Record) error {
	if !r.HasID() {
		return &errors.ValidationError{Field: "id", Message: "update requires a record ID"}
	}
	if r.Fields == nil {
		return &errors.ValidationError{Field: "fields", Message: "missing fields map"}
	}
	return nil
}

// ValidateForDelete checks that a record may be sent to a delete operation.
func ValidateForDelete(r Record) error {
	if !r.HasID() {
		return &errors.ValidationError{Field: "id", Message: "delete requires a record ID"}
	}
	return nil
}
