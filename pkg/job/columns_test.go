package job

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weconnect/airbase/pkg/records"
)

func TestFormatColumnName(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		style         ColumnStyle
		abbreviations []string
		want          string
	}{
		{"empty style untouched", "first_name", "", nil, "first_name"},
		{"lower", "First Name", ColumnLower, nil, "first name"},
		{"upper", "first name", ColumnUpper, nil, "FIRST NAME"},
		{"title", "first name", ColumnTitle, nil, "First Name"},
		{"title from underscores", "first_name", ColumnTitle, nil, "First Name"},
		{"title from hyphens", "first-name", ColumnTitle, nil, "First Name"},
		{"camel", "first name", ColumnCamel, nil, "firstName"},
		{"camel three words", "date of birth", ColumnCamel, nil, "dateOfBirth"},
		{"abbreviation in title", "contact id", ColumnTitle, []string{"id"}, "Contact ID"},
		{"abbreviation in lower", "contact id", ColumnLower, []string{"id"}, "contact ID"},
		{"abbreviation in camel", "url path", ColumnCamel, []string{"url"}, "URLPath"},
		{"abbreviation case-insensitive", "Contact Id", ColumnTitle, []string{"ID"}, "Contact ID"},
		{"single word", "email", ColumnTitle, nil, "Email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatColumnName(tt.input, tt.style, tt.abbreviations)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatColumns(t *testing.T) {
	recs := []records.Record{
		{Fields: records.Fields{"first name": "Ada", "contact id": 7}},
	}

	out := FormatColumns(recs, ColumnTitle, []string{"id"})

	assert.Equal(t, records.Fields{"First Name": "Ada", "Contact ID": 7}, out[0].Fields)
	assert.Equal(t, records.Fields{"first name": "Ada", "contact id": 7}, recs[0].Fields,
		"input records are not mutated")
}

func TestFormatColumnsEmptyStyle(t *testing.T) {
	recs := []records.Record{{Fields: records.Fields{"a b": 1}}}
	out := FormatColumns(recs, "", nil)
	assert.Equal(t, recs, out)
}

func TestColumnStyleValid(t *testing.T) {
	assert.True(t, ColumnStyle("").Valid())
	assert.True(t, ColumnTitle.Valid())
	assert.True(t, ColumnCamel.Valid())
	assert.False(t, ColumnStyle("snake").Valid())
}
