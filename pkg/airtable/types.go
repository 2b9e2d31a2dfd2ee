package airtable

import "github.com/weconnect/airbase/pkg/records"

// MaxChunkSize is the largest batch the mutation endpoints accept.
const MaxChunkSize = 10

// basesResponse is the metadata API's base listing envelope.
type basesResponse struct {
	Bases []baseInfo `json:"bases"`
}

type baseInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PermissionLevel string `json:"permissionLevel"`
}

// tablesResponse is the metadata API's table listing envelope.
type tablesResponse struct {
	Tables []tableInfo `json:"tables"`
}

type tableInfo struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	PrimaryFieldID string      `json:"primaryFieldId"`
	Fields         []FieldInfo `json:"fields"`
	Views          []ViewInfo  `json:"views"`
}

// FieldInfo describes a table column as reported by the metadata API.
type FieldInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ViewInfo describes a view as reported by the metadata API.
type ViewInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// listResponse is the record listing envelope with its pagination token.
type listResponse struct {
	Records []records.Record `json:"records"`
	Offset  string           `json:"offset,omitempty"`
}

// recordsEnvelope is the batch mutation request/response body.
type recordsEnvelope struct {
	Records  []records.Record `json:"records"`
	Typecast bool             `json:"typecast,omitempty"`
}

// singleEnvelope is the single-record mutation request body.
type singleEnvelope struct {
	Fields   records.Fields `json:"fields"`
	Typecast bool           `json:"typecast,omitempty"`
}

// deleteResponse is the batch delete response envelope.
type deleteResponse struct {
	Records []deletedRecord `json:"records"`
}

type deletedRecord struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
