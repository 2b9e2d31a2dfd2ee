package airtable

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weconnect/airbase/pkg/errors"
	"github.com/weconnect/airbase/pkg/records"
)

// newTestClient points a client at a test server for both the record and
// metadata APIs.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(
		WithAPIKey("key-test"),
		WithBaseURL(server.URL),
		WithMetaURL(server.URL+"/meta"),
		WithRetries(0),
	)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnvVar, "")

	_, err := NewClient()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAPIKeyRequired)
}

func TestNewClientEnvFallback(t *testing.T) {
	t.Setenv(APIKeyEnvVar, "key-from-env")

	client, err := NewClient()
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestBases(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/meta/bases", r.URL.Path)
		assert.Equal(t, "Bearer key-test", r.Header.Get("Authorization"))
		w.Write([]byte(`{"bases":[
			{"id":"appAAAAAAAAAAAAAA","name":"CRM","permissionLevel":"create"},
			{"id":"appBBBBBBBBBBBBBB","name":"Inventory","permissionLevel":"read"}
		]}`))
	}))

	bases, err := client.Bases(context.Background())
	require.NoError(t, err)
	require.Len(t, bases, 2)
	assert.Equal(t, "appAAAAAAAAAAAAAA", bases[0].ID)
	assert.Equal(t, "CRM", bases[0].Name)
	assert.Equal(t, "read", bases[1].PermissionLevel)
}

func TestBaseByName(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bases":[{"id":"appAAAAAAAAAAAAAA","name":"CRM"}]}`))
	}))

	base, err := client.BaseByName(context.Background(), "CRM")
	require.NoError(t, err)
	assert.Equal(t, "appAAAAAAAAAAAAAA", base.ID)

	byID, err := client.BaseByName(context.Background(), "appAAAAAAAAAAAAAA")
	require.NoError(t, err)
	assert.Equal(t, base.ID, byID.ID)

	_, err = client.BaseByName(context.Background(), "Missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestTables(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/meta/bases/appAAAAAAAAAAAAAA/tables", r.URL.Path)
		w.Write([]byte(`{"tables":[{
			"id":"tblAAAAAAAAAAAAAA",
			"name":"Contacts",
			"primaryFieldId":"fldAAAAAAAAAAAAAA",
			"fields":[
				{"id":"fldAAAAAAAAAAAAAA","name":"Name","type":"singleLineText"},
				{"id":"fldBBBBBBBBBBBBBB","name":"Email","type":"email"}
			],
			"views":[{"id":"viwAAAAAAAAAAAAAA","name":"Main View","type":"grid"}]
		}]}`))
	}))

	tables, err := client.Base("appAAAAAAAAAAAAAA").Tables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, "Contacts", table.Name)
	assert.Equal(t, "Name", table.PrimaryFieldName, "primary field name resolved from the field list")
	assert.Len(t, table.Fields, 2)
	assert.Len(t, table.Views, 1)
}

func TestListPagination(t *testing.T) {
	var offsets []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")
		offsets = append(offsets, offset)
		switch offset {
		case "":
			w.Write([]byte(`{"records":[{"id":"rec00000000000001","fields":{"Name":"A"}}],"offset":"page2"}`))
		case "page2":
			w.Write([]byte(`{"records":[{"id":"rec00000000000002","fields":{"Name":"B"}}]}`))
		}
	}))

	recs, err := client.Base("appAAAAAAAAAAAAAA").Table("Contacts").List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"", "page2"}, offsets, "client must follow the offset chain")
	require.Len(t, recs, 2)
	assert.Equal(t, "rec00000000000001", recs[0].ID)
	assert.Equal(t, "B", recs[1].Fields["Name"])
}

func TestListEmptyTable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"records":[]}`))
	}))

	recs, err := client.Base("appAAAAAAAAAAAAAA").Table("Contacts").List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, recs, "empty table yields an empty slice, never nil")
	assert.Empty(t, recs)
}

func TestListOptions(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Main View", q.Get("view"))
		assert.Equal(t, "{Status}='Active'", q.Get("filterByFormula"))
		assert.Equal(t, []string{"Name", "Email"}, q["fields[]"])
		w.Write([]byte(`{"records":[]}`))
	}))

	_, err := client.Base("appAAAAAAAAAAAAAA").Table("Contacts").List(context.Background(),
		WithView("Main View"),
		WithFormula("{Status}='Active'"),
		WithFields("Name", "Email"),
	)
	require.NoError(t, err)
}

func TestGetNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"type":"MODEL_ID_NOT_FOUND","message":"Record not found"}}`))
	}))

	_, err := client.Base("appAAAAAAAAAAAAAA").Table("Contacts").Get(context.Background(), "rec00000000000009")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestCreateRecords(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var body recordsEnvelope
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Records, 2)
		assert.Empty(t, body.Records[0].ID, "create payload must not carry IDs")

		w.Write([]byte(`{"records":[
			{"id":"rec00000000000001","fields":{"Name":"A"}},
			{"id":"rec00000000000002","fields":{"Name":"B"}}
		]}`))
	}))

	created, err := client.Base("appAAAAAAAAAAAAAA").Table("Contacts").CreateRecords(context.Background(),
		[]records.Record{
			{Fields: records.Fields{"Name": "A"}},
			{Fields: records.Fields{"Name": "B"}},
		})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "rec00000000000001", created[0].ID)
}

func TestCreateRecordsRejectsOversizedChunk(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("oversized chunk must not reach the wire")
	}))

	recs := make([]records.Record, MaxChunkSize+1)
	for i := range recs {
		recs[i] = records.Record{Fields: records.Fields{"Name": "x"}}
	}
	_, err := client.Base("appAAAAAAAAAAAAAA").Table("Contacts").CreateRecords(context.Background(), recs)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestCreateRecordsSimplifiesAttachments(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body recordsEnvelope
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		attachments, ok := body.Records[0].Fields["Photos"].([]any)
		if assert.True(t, ok) && assert.NotEmpty(t, attachments) {
			assert.Equal(t, map[string]any{"url": "https://cdn.example.com/a/photo.png"}, attachments[0],
				"write payloads carry bare {url} attachment objects")
		}

		w.Write([]byte(`{"records":[{"id":"rec00000000000001","fields":{}}]}`))
	}))

	_, err := client.Base("appAAAAAAAAAAAAAA").Table("Contacts").CreateRecords(context.Background(),
		[]records.Record{{Fields: records.Fields{
			"Photos": []records.Attachment{{
				ID:       "attAAAAAAAAAAAAAA",
				URL:      "https://cdn.example.com/a/photo.png",
				Filename: "photo.png",
				Size:     1234,
			}},
		}}})
	require.NoError(t, err)
}

func TestUpdateRecords(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)

		var body recordsEnvelope
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "rec00000000000001", body.Records[0].ID, "update payload carries IDs")

		w.Write([]byte(`{"records":[{"id":"rec00000000000001","fields":{"Name":"A2"}}]}`))
	}))

	updated, err := client.Base("appAAAAAAAAAAAAAA").Table("Contacts").UpdateRecords(context.Background(),
		[]records.Record{{ID: "rec00000000000001", Fields: records.Fields{"Name": "A2"}}})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, "A2", updated[0].Fields["Name"])
}

func TestDeleteRecords(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, []string{"rec00000000000001", "rec00000000000002"}, r.URL.Query()["records[]"])

		w.Write([]byte(`{"records":[
			{"id":"rec00000000000001","deleted":true},
			{"id":"rec00000000000002","deleted":true}
		]}`))
	}))

	ids, err := client.Base("appAAAAAAAAAAAAAA").Table("Contacts").DeleteRecords(context.Background(),
		[]records.Record{
			{ID: "rec00000000000001"},
			{ID: "rec00000000000002"},
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"rec00000000000001", "rec00000000000002"}, ids)
}

func TestTypecastPropagates(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body recordsEnvelope
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, body.Typecast)
		w.Write([]byte(`{"records":[{"id":"rec00000000000001","fields":{}}]}`))
	}))

	table := client.Base("appAAAAAAAAAAAAAA").Table("Contacts").WithTypecast()
	_, err := table.CreateRecords(context.Background(), []records.Record{{Fields: records.Fields{"N": 1}}})
	require.NoError(t, err)
}
