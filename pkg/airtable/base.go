package airtable

import (
	"context"
	"net/http"

	"github.com/weconnect/airbase/internal/transport"
	"github.com/weconnect/airbase/pkg/errors"
)

// Base is a handle for one base. Name and PermissionLevel are populated
// when the handle came from a metadata fetch, empty otherwise.
type Base struct {
	client *Client

	ID              string
	Name            string
	PermissionLevel string
}

// Table returns a handle for a table in this base by name or table ID.
// No metadata fetch is performed.
func (b *Base) Table(name string) *Table {
	return &Table{base: b, Name: name}
}

// Tables fetches the base's table metadata and returns handles with
// schema details (fields, views, primary field) attached.
func (b *Base) Tables(ctx context.Context) ([]*Table, error) {
	url := b.client.metaURL + "/bases/" + b.ID + "/tables"
	resp, err := b.client.transport.Do(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return nil, err
	}
	var result tablesResponse
	if err := transport.DecodeResponse(resp, &result); err != nil {
		return nil, err
	}

	tables := make([]*Table, len(result.Tables))
	for i, t := range result.Tables {
		table := &Table{
			base:           b,
			ID:             t.ID,
			Name:           t.Name,
			PrimaryFieldID: t.PrimaryFieldID,
			Fields:         t.Fields,
			Views:          t.Views,
		}
		for _, field := range t.Fields {
			if field.ID == t.PrimaryFieldID {
				table.PrimaryFieldName = field.Name
				break
			}
		}
		tables[i] = table
	}
	return tables, nil
}

// TableByName fetches the table with the given name or table ID,
// including its schema metadata.
func (b *Base) TableByName(ctx context.Context, nameOrID string) (*Table, error) {
	tables, err := b.Tables(ctx)
	if err != nil {
		return nil, err
	}
	for _, table := range tables {
		if table.Name == nameOrID || table.ID == nameOrID {
			return table, nil
		}
	}
	return nil, errors.NewNotFoundError("table", nameOrID)
}
