// Package linker resolves textual cross-references between tables into
// record ID links, and grafts comma-separated scalar fields into lists for
// multi-select columns.
package linker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/weconnect/airbase/pkg/records"
)

// Link describes how to resolve one or more fields of a source table into
// record IDs found in a target table, matched by the target's primary key.
type Link struct {
	Table      string   `json:"table" yaml:"table"`
	PrimaryKey string   `json:"primary_key" yaml:"primary_key"`
	Fields     []string `json:"fields" yaml:"fields"`
}

// LinkTables rewrites the named fields of every source record from
// comma-separated key text into lists of target record IDs.
//
// It consumes and mutates the source slice in place; callers that need the
// original field values must copy beforehand. Tokens with no match in the
// target table are dropped from the resolved list, not reported. Duplicate
// target primary keys resolve last-wins, matching the matcher's indexing
// policy. Empty or absent source fields are left untouched.
func LinkTables(source, target []records.Record, linkFields []string, targetPrimaryKey string) []records.Record {
	targetPrimaryKey = strings.TrimSpace(targetPrimaryKey)

	idsByKey := make(map[string]string, len(target))
	for _, record := range target {
		value := record.Fields[targetPrimaryKey]
		if !records.Truthy(value) {
			continue
		}
		idsByKey[fmt.Sprintf("%v", value)] = record.ID
	}

	for i := range source {
		for _, field := range linkFields {
			field = strings.TrimSpace(field)
			value, ok := source[i].Fields[field].(string)
			if !ok || value == "" {
				continue
			}

			resolved := make([]string, 0, 1)
			for _, token := range strings.Split(value, ",") {
				if id, ok := idsByKey[strings.TrimSpace(token)]; ok {
					resolved = append(resolved, id)
				}
			}
			source[i].Fields[field] = resolved
		}
	}
	return source
}

// Graft splits comma-separated string fields into lists so the remote
// service accepts them as multi-select values. Fields without a separator
// become single-element lists. The record is mutated in place.
func Graft(record records.Record, fields []string, sorted bool) records.Record {
	for _, field := range fields {
		value, ok := record.Fields[field].(string)
		if !ok || value == "" {
			continue
		}

		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if sorted {
			sort.Strings(parts)
		}
		record.Fields[field] = parts
	}
	return record
}
