// Package matcher builds a primary-key lookup over a snapshot of existing
// records so candidate records can be matched in O(1) during a
// reconciliation pass.
package matcher

import (
	"github.com/weconnect/airbase/pkg/records"
)

// Matcher matches candidate records against an indexed snapshot of
// existing records by composite primary key.
type Matcher interface {
	// Find returns the snapshot position of the existing record matching
	// the candidate's primary key, or false when the candidate has an
	// undefined key or no existing record shares it.
	Find(candidate records.Record) (int, bool)

	// Len returns the number of indexed existing records. Records with
	// undefined keys are not indexed and do not count.
	Len() int

	// Keys returns the primary key set the index was built over.
	Keys() []string
}

// matcher is the default implementation of Matcher.
type matcher struct {
	primaryKeys []string
	index       map[records.Key]int
}

// New indexes the existing snapshot by composite primary key.
//
// Records whose key is undefined (any key field absent or falsy) are
// skipped: they can never be matched and are left for the dead-record
// sweep. When two existing records share a key the later record wins,
// the same policy the linker applies to duplicate target keys.
func New(existing []records.Record, primaryKeys []string) Matcher {
	index := make(map[records.Key]int, len(existing))
	for i, record := range existing {
		if key, ok := records.NewKey(record, primaryKeys); ok {
			index[key] = i
		}
	}
	return &matcher{
		primaryKeys: primaryKeys,
		index:       index,
	}
}

// Find returns the snapshot position for the candidate's key.
func (m *matcher) Find(candidate records.Record) (int, bool) {
	key, ok := records.NewKey(candidate, m.primaryKeys)
	if !ok {
		// Undefined keys never match; the candidate is always a create.
		return 0, false
	}
	i, ok := m.index[key]
	return i, ok
}

// Len returns the number of indexed records.
func (m *matcher) Len() int {
	return len(m.index)
}

// Keys returns the primary key set.
func (m *matcher) Keys() []string {
	keys := make([]string, len(m.primaryKeys))
	copy(keys, m.primaryKeys)
	return keys
}
