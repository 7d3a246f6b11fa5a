package rowcache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/rowcache/codec"
	st "github.com/unkn0wn-root/rowcache/store"
)

// Item is one key/value pair for SetBulk.
type Item[V any] struct {
	Key   string
	Value V
}

// Lookup is the result of an asynchronous Get.
type Lookup[V any] struct {
	Value V
	Found bool
}

// Cache is the blocking engine: every operation performs one (or one
// transactional) round trip to the row store and returns when it completes.
// A single instance issues no implicit parallelism; calls run in invocation
// order on the caller's goroutine. Instances are safe for concurrent use by
// multiple goroutines - correctness then rests on the store's atomic upsert.
//
// V is the caller's value type; serialization goes through a pluggable
// Codec[V].
type Cache[V any] interface {
	// Init ensures the table and its uniqueness constraint exist.
	// An unreachable store yields an error matching ErrUnavailable.
	Init(ctx context.Context) error

	// Set upserts the entry, live for ttl from now. ttl == 0 means
	// Options.DefaultTTL; ttl < 0 is ErrInvalidTTL. An empty key is
	// ErrEmptyKey.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// SetBulk upserts all items with one shared expiry in one transaction.
	// Either every item lands or none do. Later duplicates of a key win; an
	// empty key anywhere in the batch is ErrEmptyKey.
	SetBulk(ctx context.Context, items []Item[V], ttl time.Duration) error

	// Get returns the live value for key. Absent and expired both yield
	// (zero, false, nil); only structural failures return an error.
	Get(ctx context.Context, key string) (v V, ok bool, err error)

	// Hits returns the read counter of a stored entry, expired or not.
	Hits(ctx context.Context, key string) (int64, bool, error)

	// Delete removes the entry if present; absent keys are not an error.
	Delete(ctx context.Context, key string) error

	// DeleteBulk removes every listed key; absent keys are silently skipped.
	DeleteBulk(ctx context.Context, keys []string) error

	// Flush removes every entry in this view's partition only.
	Flush(ctx context.Context) error

	// Export writes the partition's live entries to a transfer file.
	Export(ctx context.Context, path string) error

	// Import upserts a transfer file's records into this view's partition in
	// one transaction, keeping each record's absolute expiry. Records whose
	// expiry has already passed are imported and simply read as expired.
	Import(ctx context.Context, path string) error

	// WithPartition returns a view over another partition sharing this
	// cache's store, codec and configuration.
	WithPartition(name string) Cache[V]

	// Close releases the store. Views share the store; closing any view
	// closes them all.
	Close(ctx context.Context) error
}

// AsyncCache mirrors Cache operation for operation with identical semantics,
// but every call returns immediately with a task handle. Tasks run
// concurrently, suspend only in store I/O, and complete in any order. The ctx
// given at issue cancels a task before or during its I/O; a write that has
// already committed is not undone.
type AsyncCache[V any] interface {
	Init(ctx context.Context) *Op
	Set(ctx context.Context, key string, value V, ttl time.Duration) *Op
	SetBulk(ctx context.Context, items []Item[V], ttl time.Duration) *Op
	Get(ctx context.Context, key string) *Task[Lookup[V]]
	Hits(ctx context.Context, key string) *Task[Lookup[int64]]
	Delete(ctx context.Context, key string) *Op
	DeleteBulk(ctx context.Context, keys []string) *Op
	Flush(ctx context.Context) *Op
	Export(ctx context.Context, path string) *Op
	Import(ctx context.Context, path string) *Op
	WithPartition(name string) AsyncCache[V]

	// Close waits for in-flight tasks, then releases the store.
	Close(ctx context.Context) error
}

// Options tune both engine variants. Only Store and Codec are required.
type Options[V any] struct {
	// Required
	Store st.Store
	Codec c.Codec[V]

	Logger     Logger           // nil => NopLogger
	Hooks      Hooks            // nil => NopHooks
	Partition  string           // "" => DefaultPartition
	DefaultTTL time.Duration    // 0 => DefaultTTL (24h); negative is rejected
	Now        func() time.Time // nil => time.Now; injectable for tests
}

// New builds the blocking engine.
func New[V any](opts Options[V]) (Cache[V], error) {
	core, err := newCore[V](opts)
	if err != nil {
		return nil, err
	}
	return &cache[V]{core: core, partition: core.partition}, nil
}

// NewAsync builds the concurrent engine over the same core.
func NewAsync[V any](opts Options[V]) (AsyncCache[V], error) {
	core, err := newCore[V](opts)
	if err != nil {
		return nil, err
	}
	return &asyncCache[V]{core: core, partition: core.partition}, nil
}
