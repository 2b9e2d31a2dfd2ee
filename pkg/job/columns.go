package job

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/weconnect/airbase/pkg/records"
)

// ColumnStyle names a column naming convention applied to candidate field
// names before reconciliation, so source data matches the table schema.
type ColumnStyle string

const (
	// ColumnLower renders "first name" as "first name".
	ColumnLower ColumnStyle = "lower"
	// ColumnUpper renders "first name" as "FIRST NAME".
	ColumnUpper ColumnStyle = "upper"
	// ColumnTitle renders "first name" as "First Name".
	ColumnTitle ColumnStyle = "title"
	// ColumnCamel renders "first name" as "firstName".
	ColumnCamel ColumnStyle = "camel"
)

// Valid reports whether the style is known. The empty style is valid and
// leaves names untouched.
func (s ColumnStyle) Valid() bool {
	switch s {
	case "", ColumnLower, ColumnUpper, ColumnTitle, ColumnCamel:
		return true
	}
	return false
}

var titleCaser = cases.Title(language.English)

// FormatColumnName renders a field name in the given style. Words listed
// in abbreviations are upcased whole regardless of style, so "contact id"
// with abbreviation "id" becomes "Contact ID" under the title style.
func FormatColumnName(name string, style ColumnStyle, abbreviations []string) string {
	if style == "" {
		return name
	}

	abbrev := make(map[string]bool, len(abbreviations))
	for _, a := range abbreviations {
		abbrev[strings.ToLower(a)] = true
	}

	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	})

	for i, word := range words {
		if abbrev[strings.ToLower(word)] {
			words[i] = strings.ToUpper(word)
			continue
		}
		switch style {
		case ColumnLower:
			words[i] = strings.ToLower(word)
		case ColumnUpper:
			words[i] = strings.ToUpper(word)
		case ColumnTitle:
			words[i] = titleCaser.String(strings.ToLower(word))
		case ColumnCamel:
			if i == 0 {
				words[i] = strings.ToLower(word)
			} else {
				words[i] = titleCaser.String(strings.ToLower(word))
			}
		}
	}

	if style == ColumnCamel {
		return strings.Join(words, "")
	}
	return strings.Join(words, " ")
}

// FormatColumns returns copies of the records with every field name
// rendered in the given style.
func FormatColumns(recs []records.Record, style ColumnStyle, abbreviations []string) []records.Record {
	if style == "" {
		return recs
	}
	out := make([]records.Record, len(recs))
	for i, record := range recs {
		fields := make(records.Fields, len(record.Fields))
		for name, value := range record.Fields {
			fields[FormatColumnName(name, style, abbreviations)] = value
		}
		out[i] = records.Record{ID: record.ID, Fields: fields}
	}
	return out
}
