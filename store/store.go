// Package store defines the relational-table abstraction used by rowcache.
//
// A Store is a durable table of cache rows addressed by (partition, key).
// Implementations MUST enforce a uniqueness constraint on that pair and MUST
// implement Upsert as an atomic insert-or-replace against it: concurrent
// writers racing on the same pair may interleave freely, but the table never
// holds two rows for one pair and the last committed write wins.
//
// A Store is storage only. Fetch returns a row whether or not it has expired;
// deciding liveness (and reaping dead rows) is the engine's job. Value bytes
// are opaque: Fetch must return exactly the []byte previously passed to
// Upsert, with no transcoding or trimming.
//
// All methods must be safe for concurrent use.
package store

import (
	"context"
	"time"
)

// Entry is one cache row.
type Entry struct {
	Partition string    // logical namespace; never empty
	Key       string    // unique within Partition
	Value     []byte    // codec output, opaque to the store
	ExpiresAt time.Time // absolute expiry instant
	Hits      int64     // read counter; engine decides when it advances
	CreatedAt time.Time // first-write instant, preserved across upserts
	UpdatedAt time.Time // touched on every write
}

// Store is a transactional table of cache rows.
type Store interface {
	// Init creates the table and its (partition, key) uniqueness constraint
	// if absent. Idempotent; safe to call repeatedly and concurrently.
	Init(ctx context.Context) error

	// Upsert inserts the row or atomically replaces the existing row with the
	// same (Partition, Key). CreatedAt is only written on first insert.
	Upsert(ctx context.Context, e Entry) error

	// UpsertMany upserts all rows in a single transaction. Either every row
	// lands or none do. Rows must not repeat a (Partition, Key) pair.
	UpsertMany(ctx context.Context, entries []Entry) error

	// Fetch returns the row for (partition, key) regardless of expiry.
	// A missing row is (Entry{}, false, nil), not an error.
	Fetch(ctx context.Context, partition, key string) (Entry, bool, error)

	// Touch increments the row's hit counter. Missing rows are a no-op.
	Touch(ctx context.Context, partition, key string) error

	// Delete removes the row if present. Absent rows are not an error.
	Delete(ctx context.Context, partition, key string) error

	// DeleteMany removes every listed key in the partition. Absent keys are
	// silently skipped. An empty key list is a no-op.
	DeleteMany(ctx context.Context, partition string, keys []string) error

	// Purge removes every row in the partition; other partitions untouched.
	Purge(ctx context.Context, partition string) error

	// SelectLive returns the partition's rows with ExpiresAt > now,
	// ordered by key.
	SelectLive(ctx context.Context, partition string, now time.Time) ([]Entry, error)

	// Close releases the underlying database resources.
	Close(ctx context.Context) error
}
