package reconciler

import (
	"github.com/weconnect/airbase/pkg/batcher"
	"github.com/weconnect/airbase/pkg/differ"
	"github.com/weconnect/airbase/pkg/errors"
	"github.com/weconnect/airbase/pkg/linker"
)

// DeletePolicy selects what happens to dead records: existing records no
// candidate matched during the pass.
type DeletePolicy string

const (
	// DeleteHard removes dead records from the collection.
	DeleteHard DeletePolicy = "hard"
	// DeleteSoft flags dead records with a boolean field instead of
	// deleting them, leaving the final removal to a human.
	DeleteSoft DeletePolicy = "soft"
)

// Valid reports whether the policy is one of the known policies.
func (p DeletePolicy) Valid() bool {
	return p == DeleteHard || p == DeleteSoft
}

// DefaultSoftDeleteField is the flag field set on soft-deleted records.
const DefaultSoftDeleteField = "Delete"

// options configures a reconciler.
type options struct {
	primaryKeys     []string
	method          differ.Method
	deletePolicy    DeletePolicy
	softDeleteField string
	links           []linker.Link
	linkLister      TableLister
	arrays          []string
	overrides       []differ.Override
	chunkSize       int
	concurrency     int
}

func defaultOptions() *options {
	return &options{
		method:          differ.MethodOverwrite,
		deletePolicy:    DeleteSoft,
		softDeleteField: DefaultSoftDeleteField,
		chunkSize:       batcher.DefaultChunkSize,
		concurrency:     batcher.DefaultConcurrency,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// validate checks cross-option consistency before any work begins.
func (options *options) validate() error {
	if len(options.primaryKeys) == 0 {
		return &errors.ValidationError{
			Field:   "primary_keys",
			Message: "at least one primary key field is required",
		}
	}
	if len(options.links) > 0 && options.linkLister == nil {
		return errors.NewConfigError("reconciler", "links configured without a table lister", nil)
	}
	return nil
}

// WithPrimaryKeys sets the field names that identify a record across the
// candidate and existing collections.
func WithPrimaryKeys(keys ...string) Option {
	return func(o *options) error {
		if len(keys) == 0 {
			return &errors.ValidationError{
				Field:   "primary_keys",
				Message: "cannot be empty",
			}
		}
		o.primaryKeys = keys
		return nil
	}
}

// WithMethod sets how matched records are diffed.
func WithMethod(method differ.Method) Option {
	return func(o *options) error {
		if !method.Valid() {
			return &errors.ValidationError{
				Field:   "method",
				Value:   string(method),
				Message: "must be overwrite or combine",
			}
		}
		o.method = method
		return nil
	}
}

// WithDeletePolicy sets what happens to dead records.
func WithDeletePolicy(policy DeletePolicy) Option {
	return func(o *options) error {
		if !policy.Valid() {
			return &errors.ValidationError{
				Field:   "delete_policy",
				Value:   string(policy),
				Message: "must be hard or soft",
			}
		}
		o.deletePolicy = policy
		return nil
	}
}

// WithSoftDeleteField overrides the flag field used by the soft delete
// policy.
func WithSoftDeleteField(field string) Option {
	return func(o *options) error {
		if field == "" {
			return &errors.ValidationError{
				Field:   "soft_delete_field",
				Message: "cannot be empty",
			}
		}
		o.softDeleteField = field
		return nil
	}
}

// WithLinks configures link descriptors resolved against target tables
// before matching. Requires WithLinkLister.
func WithLinks(links ...linker.Link) Option {
	return func(o *options) error {
		o.links = links
		return nil
	}
}

// WithLinkLister sets the function used to fetch link target tables.
func WithLinkLister(lister TableLister) Option {
	return func(o *options) error {
		o.linkLister = lister
		return nil
	}
}

// WithArrays names scalar fields grafted into lists for multi-select
// columns before matching and diffing.
func WithArrays(fields ...string) Option {
	return func(o *options) error {
		o.arrays = fields
		return nil
	}
}

// WithOverrides configures user-override rules applied before diffing.
func WithOverrides(overrides ...differ.Override) Option {
	return func(o *options) error {
		o.overrides = overrides
		return nil
	}
}

// WithChunkSize sets the batch size for remote mutations.
func WithChunkSize(size int) Option {
	return func(o *options) error {
		if size <= 0 {
			return &errors.ValidationError{
				Field:   "chunk_size",
				Value:   size,
				Message: "must be positive",
			}
		}
		o.chunkSize = size
		return nil
	}
}

// WithConcurrency bounds how many chunks are dispatched at once.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return &errors.ValidationError{
				Field:   "concurrency",
				Value:   n,
				Message: "must be positive",
			}
		}
		o.concurrency = n
		return nil
	}
}
