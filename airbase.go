// Package airbase ties the table-service client and the reconciliation
// engine together behind one entry point: open a client, point a job at a
// table, and run reconciliation passes.
package airbase

import (
	"context"

	"github.com/weconnect/airbase/pkg/airtable"
	"github.com/weconnect/airbase/pkg/job"
	"github.com/weconnect/airbase/pkg/logging"
	"github.com/weconnect/airbase/pkg/reconciler"
	"github.com/weconnect/airbase/pkg/records"
)

// Airbase runs reconciliation jobs against remote tables.
type Airbase interface {
	// Client returns the underlying API client.
	Client() *airtable.Client

	// Sync reconciles the candidate records into the job's table.
	Sync(ctx context.Context, j *job.Job, candidates []records.Record) (*reconciler.Report, error)

	// SyncJob loads the job's candidate source and reconciles it.
	SyncJob(ctx context.Context, j *job.Job) (*reconciler.Report, error)
}

// airbase is the internal implementation of the Airbase interface.
type airbase struct {
	client *airtable.Client
}

// New creates an Airbase instance with the given options.
func New(opts ...Option) (Airbase, error) {
	config := &config{}
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	client := config.client
	if client == nil {
		var err error
		client, err = airtable.NewClient(config.clientOpts...)
		if err != nil {
			return nil, err
		}
	}
	return &airbase{client: client}, nil
}

// Client returns the underlying API client.
func (a *airbase) Client() *airtable.Client {
	return a.client
}

// Sync reconciles candidates into the job's table. The job's base is
// resolved by name or ID, links resolve against sibling tables in the same
// base, and column styling is the caller's concern for directly supplied
// candidates.
func (a *airbase) Sync(ctx context.Context, j *job.Job, candidates []records.Record) (*reconciler.Report, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx).With().Str("job", j.Name).Logger()
	ctx = logging.WithLogger(ctx, &logger)

	base, err := a.client.BaseByName(ctx, j.Base)
	if err != nil {
		return nil, err
	}
	table := base.Table(j.Table)
	if j.Typecast {
		table = table.WithTypecast()
	}

	lister := func(ctx context.Context, name string) ([]records.Record, error) {
		return base.Table(name).List(ctx)
	}

	engine, err := reconciler.New(j.Options(lister)...)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("base", base.ID).
		Str("table", j.Table).
		Int("candidates", len(candidates)).
		Msg("Running sync job")
	return engine.Reconcile(ctx, candidates, table)
}

// SyncJob loads candidates from the job's source file, applies the job's
// column styling, and reconciles them.
func (a *airbase) SyncJob(ctx context.Context, j *job.Job) (*reconciler.Report, error) {
	candidates, err := j.Candidates()
	if err != nil {
		return nil, err
	}
	return a.Sync(ctx, j, candidates)
}
