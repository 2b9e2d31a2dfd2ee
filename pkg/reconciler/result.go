package reconciler

import (
	"fmt"
	"time"

	"github.com/weconnect/airbase/pkg/differ"
	"github.com/weconnect/airbase/pkg/records"
)

// Report represents the outcome of one reconciliation pass. It always
// enumerates what succeeded and what failed; the caller is never left
// unsure which records were touched.
type Report struct {
	// RunID identifies this pass in logs.
	RunID string

	// Remote IDs affected by each terminal state.
	Created []string
	Updated []string
	Deleted []string
	Flagged []string

	// Unchanged counts matched candidates whose diff was empty.
	Unchanged int

	// Failures, one per record that could not be processed or applied.
	Failed []Failure

	// Metadata about the pass.
	Metadata ReportMetadata
}

// Failure records one per-record problem.
type Failure struct {
	Record    records.Record
	Operation string // "link", "compare", "create", "update", "delete", "flag"
	Err       error
}

// ReportMetadata contains metadata about the reconciliation pass.
type ReportMetadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Candidates int
	Existing   int

	Method       differ.Method
	DeletePolicy DeletePolicy
}

// IsSuccess returns true if every record was applied cleanly.
func (r *Report) IsSuccess() bool {
	return len(r.Failed) == 0
}

// Touched returns the number of records mutated remotely.
func (r *Report) Touched() int {
	return len(r.Created) + len(r.Updated) + len(r.Deleted) + len(r.Flagged)
}

// Summary returns a human-readable summary of the pass.
func (r *Report) Summary() string {
	if !r.IsSuccess() {
		return fmt.Sprintf("Reconciliation completed with %d failures: %d created, %d updated, %d deleted, %d flagged, %d unchanged",
			len(r.Failed), len(r.Created), len(r.Updated), len(r.Deleted), len(r.Flagged), r.Unchanged)
	}
	if r.Touched() == 0 {
		return "Reconciliation completed. No changes needed."
	}
	return fmt.Sprintf("Reconciliation successful: %d created, %d updated, %d deleted, %d flagged, %d unchanged",
		len(r.Created), len(r.Updated), len(r.Deleted), len(r.Flagged), r.Unchanged)
}

// NewReport creates a report with defaults.
func NewReport(runID string) *Report {
	return &Report{
		RunID:   runID,
		Created: []string{},
		Updated: []string{},
		Deleted: []string{},
		Flagged: []string{},
		Failed:  []Failure{},
		Metadata: ReportMetadata{
			StartTime: time.Now(),
		},
	}
}

// Finalize calculates duration and marks completion.
func (r *Report) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}
