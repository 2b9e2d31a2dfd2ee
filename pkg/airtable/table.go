package airtable

import (
	"context"
	"net/http"
	"net/url"

	"github.com/weconnect/airbase/internal/transport"
	"github.com/weconnect/airbase/pkg/errors"
	"github.com/weconnect/airbase/pkg/logging"
	"github.com/weconnect/airbase/pkg/records"
)

// Table is a handle for one table in one base. Schema fields are populated
// when the handle came from a metadata fetch.
type Table struct {
	base *Base

	ID               string
	Name             string
	PrimaryFieldID   string
	PrimaryFieldName string
	Fields           []FieldInfo
	Views            []ViewInfo

	typecast bool
}

// WithTypecast returns a handle that asks the service to coerce written
// cell values to the column type.
func (t *Table) WithTypecast() *Table {
	clone := *t
	clone.typecast = true
	return &clone
}

// ListOption narrows a List call.
type ListOption func(url.Values)

// WithView restricts the listing to a view by ID or name.
func WithView(view string) ListOption {
	return func(q url.Values) { q.Set("view", view) }
}

// WithFormula filters the listing server-side by formula.
func WithFormula(formula string) ListOption {
	return func(q url.Values) { q.Set("filterByFormula", formula) }
}

// WithFields restricts which fields the listing returns.
func WithFields(fields ...string) ListOption {
	return func(q url.Values) {
		for _, f := range fields {
			q.Add("fields[]", f)
		}
	}
}

// url composes the record API URL for this table.
func (t *Table) url() string {
	name := t.Name
	if name == "" {
		name = t.ID
	}
	return t.base.client.baseURL + "/" + t.base.ID + "/" + url.PathEscape(name)
}

// recordURL composes the URL for a single record.
func (t *Table) recordURL(recordID string) string {
	return t.url() + "/" + recordID
}

// List fetches all records, following the server's pagination offsets
// until the listing is exhausted. An empty table yields an empty slice,
// never nil.
func (t *Table) List(ctx context.Context, opts ...ListOption) ([]records.Record, error) {
	query := url.Values{}
	for _, opt := range opts {
		opt(query)
	}

	all := make([]records.Record, 0)
	for {
		resp, err := t.base.client.transport.Do(ctx, http.MethodGet, t.url(), query, nil)
		if err != nil {
			return nil, err
		}
		var page listResponse
		if err := transport.DecodeResponse(resp, &page); err != nil {
			return nil, errors.WrapAPI(t.Name, 0, err)
		}
		all = append(all, page.Records...)

		if page.Offset == "" {
			break
		}
		query.Set("offset", page.Offset)
	}

	logging.FromContext(ctx).Info().
		Str("table", t.Name).
		Int("count", len(all)).
		Msg("Fetched records")
	return all, nil
}

// Get fetches one record by ID.
func (t *Table) Get(ctx context.Context, recordID string) (records.Record, error) {
	resp, err := t.base.client.transport.Do(ctx, http.MethodGet, t.recordURL(recordID), nil, nil)
	if err != nil {
		return records.Record{}, err
	}
	var record records.Record
	if err := transport.DecodeResponse(resp, &record); err != nil {
		if errors.IsNotFound(err) {
			return records.Record{}, errors.NewNotFoundError("record", recordID)
		}
		return records.Record{}, err
	}
	return record, nil
}

// Create creates one record and returns it with its assigned ID.
func (t *Table) Create(ctx context.Context, record records.Record) (records.Record, error) {
	if err := records.ValidateForCreate(record); err != nil {
		return records.Record{}, err
	}
	body := singleEnvelope{Fields: writeFields(record), Typecast: t.typecast}

	resp, err := t.base.client.transport.Do(ctx, http.MethodPost, t.url(), nil, body)
	if err != nil {
		return records.Record{}, err
	}
	var created records.Record
	if err := transport.DecodeResponse(resp, &created); err != nil {
		return records.Record{}, err
	}

	logging.FromContext(ctx).Info().
		Str("table", t.Name).
		Str("record_id", created.ID).
		Msg("Created record")
	return created, nil
}

// Update patches one record's fields.
func (t *Table) Update(ctx context.Context, record records.Record) (records.Record, error) {
	if err := records.ValidateForUpdate(record); err != nil {
		return records.Record{}, err
	}
	body := singleEnvelope{Fields: writeFields(record), Typecast: t.typecast}

	resp, err := t.base.client.transport.Do(ctx, http.MethodPatch, t.recordURL(record.ID), nil, body)
	if err != nil {
		return records.Record{}, err
	}
	var updated records.Record
	if err := transport.DecodeResponse(resp, &updated); err != nil {
		return records.Record{}, err
	}
	return updated, nil
}

// Delete removes one record by ID.
func (t *Table) Delete(ctx context.Context, recordID string) (bool, error) {
	if recordID == "" {
		return false, &errors.ValidationError{Field: "id", Message: "delete requires a record ID"}
	}
	resp, err := t.base.client.transport.Do(ctx, http.MethodDelete, t.recordURL(recordID), nil, nil)
	if err != nil {
		return false, err
	}
	var deleted deletedRecord
	if err := transport.DecodeResponse(resp, &deleted); err != nil {
		return false, err
	}
	return deleted.Deleted, nil
}

// ListRecords adapts List to the reconciler's Collection interface.
func (t *Table) ListRecords(ctx context.Context) ([]records.Record, error) {
	return t.List(ctx)
}

// CreateRecords creates up to MaxChunkSize records in one call, returning
// the created records with IDs assigned, in input order.
func (t *Table) CreateRecords(ctx context.Context, recs []records.Record) ([]records.Record, error) {
	if err := validateChunk(recs, records.ValidateForCreate); err != nil {
		return nil, err
	}

	body := recordsEnvelope{Records: writeRecords(recs, false), Typecast: t.typecast}
	resp, err := t.base.client.transport.Do(ctx, http.MethodPost, t.url(), nil, body)
	if err != nil {
		return nil, err
	}
	var result recordsEnvelope
	if err := transport.DecodeResponse(resp, &result); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info().
		Str("table", t.Name).
		Int("count", len(result.Records)).
		Msg("Created records")
	return result.Records, nil
}

// UpdateRecords patches up to MaxChunkSize records in one call, returning
// the updated records in input order.
func (t *Table) UpdateRecords(ctx context.Context, recs []records.Record) ([]records.Record, error) {
	if err := validateChunk(recs, records.ValidateForUpdate); err != nil {
		return nil, err
	}

	body := recordsEnvelope{Records: writeRecords(recs, true), Typecast: t.typecast}
	resp, err := t.base.client.transport.Do(ctx, http.MethodPatch, t.url(), nil, body)
	if err != nil {
		return nil, err
	}
	var result recordsEnvelope
	if err := transport.DecodeResponse(resp, &result); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info().
		Str("table", t.Name).
		Int("count", len(result.Records)).
		Msg("Updated records")
	return result.Records, nil
}

// DeleteRecords deletes up to MaxChunkSize records in one call, returning
// the deleted record IDs in input order.
func (t *Table) DeleteRecords(ctx context.Context, recs []records.Record) ([]string, error) {
	if err := validateChunk(recs, records.ValidateForDelete); err != nil {
		return nil, err
	}

	query := url.Values{}
	for _, record := range recs {
		query.Add("records[]", record.ID)
	}
	resp, err := t.base.client.transport.Do(ctx, http.MethodDelete, t.url(), query, nil)
	if err != nil {
		return nil, err
	}
	var result deleteResponse
	if err := transport.DecodeResponse(resp, &result); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(result.Records))
	for _, deleted := range result.Records {
		if deleted.Deleted {
			ids = append(ids, deleted.ID)
		}
	}
	logging.FromContext(ctx).Info().
		Str("table", t.Name).
		Int("count", len(ids)).
		Msg("Deleted records")
	return ids, nil
}

// validateChunk rejects oversized chunks and malformed records before any
// bytes go on the wire.
func validateChunk(recs []records.Record, validate func(records.Record) error) error {
	if len(recs) > MaxChunkSize {
		return &errors.ValidationError{
			Field:   "records",
			Value:   len(recs),
			Message: "chunk exceeds the batch API limit",
		}
	}
	for _, record := range recs {
		if err := validate(record); err != nil {
			return err
		}
	}
	return nil
}

// writeFields prepares a record's fields for the write API, simplifying
// attachment values down to bare {url} objects.
func writeFields(record records.Record) records.Fields {
	fields := make(records.Fields, len(record.Fields))
	for name, value := range record.Fields {
		fields[name] = records.SimplifyAttachments(value)
	}
	return fields
}

// writeRecords prepares a chunk for the batch write API. IDs are included
// only for updates.
func writeRecords(recs []records.Record, withID bool) []records.Record {
	out := make([]records.Record, len(recs))
	for i, record := range recs {
		out[i] = records.Record{Fields: writeFields(record)}
		if withID {
			out[i].ID = record.ID
		}
	}
	return out
}
