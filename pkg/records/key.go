package records

import (
	"fmt"
	"strings"
)

// Key is a hashable composite primary key derived from a record. It encodes
// the extracted key-field values in order, so two records with the same
// values for the same primary key set produce equal Keys.
type Key string

// Separators chosen to not collide with printable field values.
const (
	fieldSep   = "\x1f"
	elementSep = "\x1e"
)

// NewKey derives the hashable key for a record over the given primary key
// set. It is total: when any key field is absent or falsy the key is
// undefined and ok is false, making the record unmatchable. List values
// contribute their element identities in order.
func NewKey(r Record, primaryKeys []string) (Key, bool) {
	if len(primaryKeys) == 0 {
		return "", false
	}

	parts := make([]string, 0, len(primaryKeys))
	for _, name := range primaryKeys {
		value := r.Fields[name]
		if !Truthy(value) {
			return "", false
		}
		if elements, ok := List(value); ok {
			ids := make([]string, len(elements))
			for i, el := range elements {
				ids[i] = Identity(el)
			}
			parts = append(parts, strings.Join(ids, elementSep))
			continue
		}
		parts = append(parts, fmt.Sprintf("%v", value))
	}
	return Key(strings.Join(parts, fieldSep)), true
}

// String returns a display form of the key with visible separators.
func (k Key) String() string {
	s := strings.ReplaceAll(string(k), fieldSep, "|")
	return strings.ReplaceAll(s, elementSep, ",")
}
