// Package batcher partitions record lists into fixed-size chunks and
// issues them concurrently against a remote mutation operation, isolating
// failures at chunk granularity.
package batcher

import (
	"context"
	"sync"

	"github.com/weconnect/airbase/pkg/errors"
	"github.com/weconnect/airbase/pkg/logging"
	"github.com/weconnect/airbase/pkg/records"
)

const (
	// DefaultChunkSize matches the remote batch API limit.
	DefaultChunkSize = 10
	// DefaultConcurrency bounds concurrently dispatched chunks. The
	// transport's rate gate still applies underneath.
	DefaultConcurrency = 10
)

// Operation applies one chunk remotely and returns the affected record ID
// for each input record, in input order. An empty ID at a position marks
// that single record as failed without failing the chunk.
type Operation func(ctx context.Context, chunk []records.Record) ([]string, error)

// Result reports the outcome for one record.
type Result struct {
	Record records.Record
	ID     string // Affected remote ID when the operation succeeded
	Err    error
}

// Batcher dispatches chunked operations.
type Batcher struct {
	chunkSize   int
	concurrency int
}

// Option configures a Batcher.
type Option func(*Batcher)

// WithChunkSize sets the chunk size.
func WithChunkSize(size int) Option {
	return func(b *Batcher) {
		if size > 0 {
			b.chunkSize = size
		}
	}
}

// WithConcurrency bounds how many chunks are in flight at once.
func WithConcurrency(n int) Option {
	return func(b *Batcher) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// New creates a Batcher.
func New(opts ...Option) *Batcher {
	b := &Batcher{
		chunkSize:   DefaultChunkSize,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Chunks splits recs into consecutive chunks of at most size records.
func Chunks(recs []records.Record, size int) [][]records.Record {
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([][]records.Record, 0, (len(recs)+size-1)/size)
	for start := 0; start < len(recs); start += size {
		end := start + size
		if end > len(recs) {
			end = len(recs)
		}
		chunks = append(chunks, recs[start:end])
	}
	return chunks
}

// Dispatch splits recs into chunks and runs op on every chunk
// concurrently. A chunk's definitive failure marks only that chunk's
// records failed; other chunks are unaffected, and no failure cancels
// in-flight chunks. Results preserve input order.
func (b *Batcher) Dispatch(ctx context.Context, op Operation, recs []records.Record) []Result {
	results := make([]Result, len(recs))
	if len(recs) == 0 {
		return results
	}

	chunks := Chunks(recs, b.chunkSize)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, b.concurrency)

	offset := 0
	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk []records.Record, offset int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			ids, err := op(ctx, chunk)
			for i, record := range chunk {
				result := Result{Record: record}
				switch {
				case err != nil:
					result.Err = err
				case i < len(ids) && ids[i] != "":
					result.ID = ids[i]
				default:
					// The remote call succeeded but this record was
					// rejected individually.
					result.Err = errors.NewRecordError("apply", record.ID, errors.ErrInvalidInput)
				}
				results[offset+i] = result
			}

			if err != nil {
				logging.FromContext(ctx).Error().
					Err(err).
					Int("chunk_size", len(chunk)).
					Msg("Chunk dispatch failed")
			}
		}(chunk, offset)
		offset += len(chunk)
	}

	wg.Wait()
	return results
}

// Failed filters results down to the failures.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
