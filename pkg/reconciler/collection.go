package reconciler

import (
	"context"

	"github.com/weconnect/airbase/pkg/records"
)

// Collection is the capability set the reconciler needs from a remote
// table. Each mutating call accepts up to one chunk of records and returns
// one result per input record, preserving input order. airtable.Table
// satisfies this interface.
type Collection interface {
	// ListRecords fetches the full collection snapshot. Empty collections
	// yield an empty slice, never nil.
	ListRecords(ctx context.Context) ([]records.Record, error)

	// CreateRecords creates one chunk and returns the created records
	// with their assigned IDs.
	CreateRecords(ctx context.Context, recs []records.Record) ([]records.Record, error)

	// UpdateRecords patches one chunk and returns the updated records.
	UpdateRecords(ctx context.Context, recs []records.Record) ([]records.Record, error)

	// DeleteRecords deletes one chunk and returns the deleted record IDs.
	DeleteRecords(ctx context.Context, recs []records.Record) ([]string, error)
}

// TableLister fetches the records of a named table in the same base, used
// to resolve link descriptors against their target tables.
type TableLister func(ctx context.Context, table string) ([]records.Record, error)
