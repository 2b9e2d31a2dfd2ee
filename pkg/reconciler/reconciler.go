// Package reconciler drives record synchronization against a remote
// collection: it matches candidate records to an existing snapshot by
// primary key, computes minimal diffs, classifies every record as
// create, update, or no-op, sweeps dead records, and dispatches batched
// mutations through the rate-limited transport.
package reconciler

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/weconnect/airbase/pkg/batcher"
	"github.com/weconnect/airbase/pkg/differ"
	"github.com/weconnect/airbase/pkg/errors"
	"github.com/weconnect/airbase/pkg/linker"
	"github.com/weconnect/airbase/pkg/logging"
	"github.com/weconnect/airbase/pkg/matcher"
	"github.com/weconnect/airbase/pkg/records"
)

// Reconciler synchronizes candidate record sets into remote collections.
type Reconciler interface {
	// Reconcile runs one pass: the candidate set becomes authoritative
	// for the collection, modulo override rules and the delete policy.
	// Per-record problems never abort the pass; they accumulate into the
	// report. Only configuration and snapshot-fetch errors return early.
	Reconcile(ctx context.Context, candidates []records.Record, collection Collection) (*Report, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	options *options
	differ  differ.Differ
	batcher *batcher.Batcher
}

// New creates a Reconciler with options. Configuration errors surface
// here, before any work begins.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	return &reconciler{
		options: options,
		differ:  differ.New(),
		batcher: batcher.New(
			batcher.WithChunkSize(options.chunkSize),
			batcher.WithConcurrency(options.concurrency),
		),
	}, nil
}

// batches holds the classified record sets for one pass.
type batches struct {
	creates []records.Record
	updates []records.Record

	// consumed marks snapshot positions matched by some candidate.
	// Unconsumed positions are dead records after the pass.
	consumed map[int]bool
}

// Reconcile performs one pass with a step-by-step flow.
func (r *reconciler) Reconcile(ctx context.Context, candidates []records.Record, collection Collection) (*Report, error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)

	report := NewReport(runID)
	report.Metadata.Method = r.options.method
	report.Metadata.DeletePolicy = r.options.deletePolicy
	report.Metadata.Candidates = len(candidates)

	// Step 1: snapshot the existing collection.
	existing, err := collection.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	report.Metadata.Existing = len(existing)

	// Step 2: resolve link descriptors. Matching may depend on linked
	// identifiers, so this precedes indexing.
	if err := r.resolveLinks(ctx, candidates); err != nil {
		return nil, err
	}

	// Step 3: classify candidates into creates, updates, and no-ops.
	classified := r.classify(ctx, candidates, existing, report)

	logger.Info().
		Int("candidates", len(candidates)).
		Int("existing", len(existing)).
		Int("creates", len(classified.creates)).
		Int("updates", len(classified.updates)).
		Int("unchanged", report.Unchanged).
		Msg("Classified records")

	// Step 4: dispatch creates and updates. The two batches carry no
	// ordering guarantee relative to each other, but both must complete
	// before the dead-record sweep below.
	r.dispatchMutations(ctx, collection, classified, report)

	// Step 5: sweep dead records under the configured policy.
	r.sweepDead(ctx, collection, existing, classified.consumed, report)

	report.Finalize()
	logger.Info().
		Int("created", len(report.Created)).
		Int("updated", len(report.Updated)).
		Int("deleted", len(report.Deleted)).
		Int("flagged", len(report.Flagged)).
		Int("failed", len(report.Failed)).
		Dur("duration", report.Metadata.Duration).
		Msg("Reconciliation pass complete")

	return report, nil
}

// resolveLinks rewrites candidate link fields into target record IDs.
func (r *reconciler) resolveLinks(ctx context.Context, candidates []records.Record) error {
	for _, link := range r.options.links {
		target, err := r.options.linkLister(ctx, link.Table)
		if err != nil {
			return errors.NewConfigError("reconciler", "failed to fetch link target table "+link.Table, err)
		}
		linker.LinkTables(candidates, target, link.Fields, link.PrimaryKey)

		logging.FromContext(ctx).Debug().
			Str("target_table", link.Table).
			Strs("fields", link.Fields).
			Int("target_records", len(target)).
			Msg("Resolved links")
	}
	return nil
}

// classify sorts each candidate into the create or update batch. A
// failure on one record is recorded and never blocks the others.
func (r *reconciler) classify(ctx context.Context, candidates []records.Record, existing []records.Record, report *Report) *batches {
	index := matcher.New(existing, r.options.primaryKeys)
	logger := logging.FromContext(ctx)

	classified := &batches{consumed: make(map[int]bool, len(existing))}

	for _, candidate := range candidates {
		if len(r.options.arrays) > 0 {
			candidate = linker.Graft(candidate, r.options.arrays, false)
		}

		position, matched := index.Find(candidate)
		if !matched {
			// Unmatchable or genuinely new: always a create.
			if err := records.ValidateForCreate(candidate); err != nil {
				report.Failed = append(report.Failed, Failure{Record: candidate, Operation: "create", Err: err})
				continue
			}
			classified.creates = append(classified.creates, candidate)
			continue
		}

		classified.consumed[position] = true
		existingRecord := existing[position]

		delta, err := r.differ.Compare(candidate, existingRecord, r.options.method, r.options.overrides, nil)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("record_id", existingRecord.ID).
				Msg("Compare failed, skipping record")
			report.Failed = append(report.Failed, Failure{Record: candidate, Operation: "compare", Err: err})
			continue
		}

		if len(delta.Fields) == 0 {
			report.Unchanged++
			continue
		}
		classified.updates = append(classified.updates, delta)
	}

	return classified
}

// dispatchMutations sends the create and update batches concurrently and
// waits for both before returning.
func (r *reconciler) dispatchMutations(ctx context.Context, collection Collection, classified *batches, report *Report) {
	var (
		wg            sync.WaitGroup
		createResults []batcher.Result
		updateResults []batcher.Result
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		createResults = r.batcher.Dispatch(ctx, createOp(collection), classified.creates)
	}()
	go func() {
		defer wg.Done()
		updateResults = r.batcher.Dispatch(ctx, updateOp(collection), classified.updates)
	}()
	wg.Wait()

	collectResults(createResults, "create", &report.Created, report)
	collectResults(updateResults, "update", &report.Updated, report)
}

// sweepDead finds existing records no candidate consumed and applies the
// delete policy: hard delete, or flag-and-keep for a human to review.
func (r *reconciler) sweepDead(ctx context.Context, collection Collection, existing []records.Record, consumed map[int]bool, report *Report) {
	var dead []records.Record
	for i, record := range existing {
		if !consumed[i] {
			dead = append(dead, record)
		}
	}
	if len(dead) == 0 {
		return
	}

	logging.FromContext(ctx).Info().
		Int("dead", len(dead)).
		Str("policy", string(r.options.deletePolicy)).
		Msg("Sweeping dead records")

	if r.options.deletePolicy == DeleteHard {
		results := r.batcher.Dispatch(ctx, deleteOp(collection), dead)
		collectResults(results, "delete", &report.Deleted, report)
		return
	}

	// Soft delete: set the flag field, skipping records already flagged.
	flag := r.options.softDeleteField
	var flags []records.Record
	for _, record := range dead {
		if records.Truthy(record.Fields[flag]) {
			continue
		}
		flags = append(flags, records.Record{
			ID:     record.ID,
			Fields: records.Fields{flag: true},
		})
	}
	results := r.batcher.Dispatch(ctx, updateOp(collection), flags)
	collectResults(results, "flag", &report.Flagged, report)
}

// collectResults folds batch results into the report.
func collectResults(results []batcher.Result, operation string, succeeded *[]string, report *Report) {
	for _, result := range results {
		if result.Err != nil {
			report.Failed = append(report.Failed, Failure{
				Record:    result.Record,
				Operation: operation,
				Err:       result.Err,
			})
			continue
		}
		*succeeded = append(*succeeded, result.ID)
	}
}

// createOp adapts Collection.CreateRecords to the batcher's operation shape.
func createOp(collection Collection) batcher.Operation {
	return func(ctx context.Context, chunk []records.Record) ([]string, error) {
		created, err := collection.CreateRecords(ctx, chunk)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(chunk))
		for i := range chunk {
			if i < len(created) {
				ids[i] = created[i].ID
			}
		}
		return ids, nil
	}
}

// updateOp adapts Collection.UpdateRecords to the batcher's operation shape.
func updateOp(collection Collection) batcher.Operation {
	return func(ctx context.Context, chunk []records.Record) ([]string, error) {
		updated, err := collection.UpdateRecords(ctx, chunk)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(chunk))
		for i := range chunk {
			if i < len(updated) {
				ids[i] = updated[i].ID
			}
		}
		return ids, nil
	}
}

// deleteOp adapts Collection.DeleteRecords to the batcher's operation shape.
func deleteOp(collection Collection) batcher.Operation {
	return func(ctx context.Context, chunk []records.Record) ([]string, error) {
		deleted, err := collection.DeleteRecords(ctx, chunk)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(chunk))
		for i := range chunk {
			if i < len(deleted) {
				ids[i] = deleted[i]
			}
		}
		return ids, nil
	}
}
