// Package job defines declarative sync jobs: YAML documents that name a
// base, a table, and the reconciliation rules to apply to a candidate
// record set.
package job

import (
	"encoding/json"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/weconnect/airbase/pkg/differ"
	"github.com/weconnect/airbase/pkg/errors"
	"github.com/weconnect/airbase/pkg/linker"
	"github.com/weconnect/airbase/pkg/reconciler"
	"github.com/weconnect/airbase/pkg/records"
)

// Job describes one reconciliation pass against one table.
type Job struct {
	// Name labels the job in logs and reports.
	Name string `yaml:"name" json:"name"`

	// Base is the base ID or name; Table is the table name.
	Base  string `yaml:"base" json:"base"`
	Table string `yaml:"table" json:"table"`

	// Source is an optional path to a JSON file holding the candidate
	// records. Jobs run programmatically may supply candidates directly.
	Source string `yaml:"source,omitempty" json:"source,omitempty"`

	// PrimaryKeys are the field names that identify a record.
	PrimaryKeys []string `yaml:"primary_keys" json:"primary_keys"`

	// Method selects the diff strategy; empty means overwrite.
	Method differ.Method `yaml:"method,omitempty" json:"method,omitempty"`

	// DeletePolicy selects the dead-record sweep; empty means soft.
	DeletePolicy    reconciler.DeletePolicy `yaml:"delete_policy,omitempty" json:"delete_policy,omitempty"`
	SoftDeleteField string                  `yaml:"soft_delete_field,omitempty" json:"soft_delete_field,omitempty"`

	// Links are resolved against sibling tables before matching.
	Links []linker.Link `yaml:"links,omitempty" json:"links,omitempty"`

	// Arrays names scalar fields grafted into lists for multi-select
	// columns.
	Arrays []string `yaml:"arrays,omitempty" json:"arrays,omitempty"`

	// Overrides preserve user-edited fields during diffing.
	Overrides []differ.Override `yaml:"overrides,omitempty" json:"overrides,omitempty"`

	// Typecast asks the service to coerce written values to column types.
	Typecast bool `yaml:"typecast,omitempty" json:"typecast,omitempty"`

	// ColumnStyle renames candidate field names to the table's naming
	// convention; Abbreviations are upcased whole in any style.
	ColumnStyle   ColumnStyle `yaml:"column_style,omitempty" json:"column_style,omitempty"`
	Abbreviations []string    `yaml:"abbreviations,omitempty" json:"abbreviations,omitempty"`

	ChunkSize   int `yaml:"chunk_size,omitempty" json:"chunk_size,omitempty"`
	Concurrency int `yaml:"concurrency,omitempty" json:"concurrency,omitempty"`
}

// File is a YAML document holding one or more jobs.
type File struct {
	Jobs []Job `yaml:"jobs" json:"jobs"`
}

// Load reads and parses a job file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("job", "failed to read job file "+path, err)
	}
	return Parse(data)
}

// Parse parses a YAML job document and validates every job in it.
func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewConfigError("job", "failed to parse job file", err)
	}
	if len(file.Jobs) == 0 {
		return nil, errors.NewConfigError("job", "job file defines no jobs", nil)
	}
	for i := range file.Jobs {
		if err := file.Jobs[i].Validate(); err != nil {
			return nil, err
		}
	}
	return &file, nil
}

// Validate checks the job for problems that would fail at run time.
func (j *Job) Validate() error {
	if j.Base == "" {
		return errors.NewValidationError("base", j.Base, "job requires a base")
	}
	if j.Table == "" {
		return errors.NewValidationError("table", j.Table, "job requires a table")
	}
	if len(j.PrimaryKeys) == 0 {
		return errors.NewValidationError("primary_keys", nil, "job requires at least one primary key")
	}
	if j.Method != "" && !j.Method.Valid() {
		return errors.NewValidationError("method", string(j.Method), "must be overwrite or combine")
	}
	if j.DeletePolicy != "" && !j.DeletePolicy.Valid() {
		return errors.NewValidationError("delete_policy", string(j.DeletePolicy), "must be hard or soft")
	}
	if !j.ColumnStyle.Valid() {
		return errors.NewValidationError("column_style", string(j.ColumnStyle), "must be lower, upper, title, or camel")
	}
	return nil
}

// Options translates the job into reconciler options. The caller supplies
// a link lister bound to the job's base when links are configured.
func (j *Job) Options(lister reconciler.TableLister) []reconciler.Option {
	opts := []reconciler.Option{
		reconciler.WithPrimaryKeys(j.PrimaryKeys...),
	}
	if j.Method != "" {
		opts = append(opts, reconciler.WithMethod(j.Method))
	}
	if j.DeletePolicy != "" {
		opts = append(opts, reconciler.WithDeletePolicy(j.DeletePolicy))
	}
	if j.SoftDeleteField != "" {
		opts = append(opts, reconciler.WithSoftDeleteField(j.SoftDeleteField))
	}
	if len(j.Links) > 0 {
		opts = append(opts, reconciler.WithLinks(j.Links...))
		opts = append(opts, reconciler.WithLinkLister(lister))
	}
	if len(j.Arrays) > 0 {
		opts = append(opts, reconciler.WithArrays(j.Arrays...))
	}
	if len(j.Overrides) > 0 {
		opts = append(opts, reconciler.WithOverrides(j.Overrides...))
	}
	if j.ChunkSize > 0 {
		opts = append(opts, reconciler.WithChunkSize(j.ChunkSize))
	}
	if j.Concurrency > 0 {
		opts = append(opts, reconciler.WithConcurrency(j.Concurrency))
	}
	return opts
}

// Candidates loads the job's candidate records from its source file and
// applies the configured column styling.
func (j *Job) Candidates() ([]records.Record, error) {
	if j.Source == "" {
		return nil, errors.NewConfigError("job", "job "+j.Name+" has no candidate source", nil)
	}
	data, err := os.ReadFile(j.Source)
	if err != nil {
		return nil, errors.NewConfigError("job", "failed to read candidate source "+j.Source, err)
	}

	// The source is a JSON array of field objects.
	var fieldSets []records.Fields
	if err := json.Unmarshal(data, &fieldSets); err != nil {
		return nil, errors.NewConfigError("job", "failed to parse candidate source "+j.Source, err)
	}

	candidates := make([]records.Record, len(fieldSets))
	for i, fields := range fieldSets {
		candidates[i] = records.Record{Fields: fields}
	}
	return FormatColumns(candidates, j.ColumnStyle, j.Abbreviations), nil
}
