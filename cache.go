package rowcache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	c "github.com/unkn0wn-root/rowcache/codec"
	st "github.com/unkn0wn-root/rowcache/store"
)

// core holds everything both engine variants share: the row store, the codec
// and the partition/TTL/expiry rules. The sync and async front-ends are thin
// shells over it, so the business rules exist exactly once.
type core[V any] struct {
	store      st.Store
	codec      c.Codec[V]
	log        Logger
	hooks      Hooks
	partition  string
	defaultTTL time.Duration
	now        func() time.Time

	closed atomic.Bool
	tasks  taskGroup // in-flight async tasks; idle under the sync engine
}

func newCore[V any](opts Options[V]) (*core[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("rowcache: store is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("rowcache: codec is required")
	}
	if opts.DefaultTTL < 0 {
		return nil, ErrInvalidTTL
	}

	e := &core[V]{
		store: opts.Store,
		codec: opts.Codec,
	}

	// defaults
	e.log = coalesce[Logger](opts.Logger, NopLogger{})
	e.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	e.partition = coalesce[string](opts.Partition, DefaultPartition)
	e.defaultTTL = coalesce[time.Duration](opts.DefaultTTL, DefaultTTL)
	if opts.Now != nil {
		e.now = opts.Now
	} else {
		e.now = time.Now
	}
	return e, nil
}

// resolveTTL validates ttl before any store access.
func (e *core[V]) resolveTTL(ttl time.Duration) (time.Duration, error) {
	if ttl < 0 {
		return 0, ErrInvalidTTL
	}
	if ttl == 0 {
		return e.defaultTTL, nil
	}
	return ttl, nil
}

func (e *core[V]) init(ctx context.Context) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := e.store.Init(ctx); err != nil {
		return &StorageError{Op: "init", Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	e.log.Debug("schema ensured", nil)
	return nil
}

func (e *core[V]) set(ctx context.Context, partition, key string, value V, ttl time.Duration) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}
	ttl, err := e.resolveTTL(ttl)
	if err != nil {
		return err
	}
	payload, err := e.codec.Encode(value)
	if err != nil {
		return &CodecError{Key: key, Op: "encode", Err: err}
	}
	now := e.now().UTC()
	entry := st.Entry{
		Partition: partition,
		Key:       key,
		Value:     payload,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.Upsert(ctx, entry); err != nil {
		return &StorageError{Op: "set", Err: err}
	}
	e.log.Debug("set", Fields{"partition": partition, "key": key, "ttl": ttl})
	return nil
}

func (e *core[V]) setBulk(ctx context.Context, partition string, items []Item[V], ttl time.Duration) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if len(items) == 0 {
		return ErrEmptyBulk
	}
	ttl, err := e.resolveTTL(ttl)
	if err != nil {
		return err
	}

	// Encode everything before touching the store, so a bad value leaves the
	// batch entirely unwritten.
	now := e.now().UTC()
	expires := now.Add(ttl)
	entries := make([]st.Entry, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if it.Key == "" {
			return ErrEmptyKey
		}
		payload, err := e.codec.Encode(it.Value)
		if err != nil {
			return &CodecError{Key: it.Key, Op: "encode", Err: err}
		}
		entry := st.Entry{
			Partition: partition,
			Key:       it.Key,
			Value:     payload,
			ExpiresAt: expires,
			CreatedAt: now,
			UpdatedAt: now,
		}
		// A single multi-row upsert must not hit one row twice; keep the last
		// occurrence of a repeated key, matching last-write-wins.
		if i, ok := index[it.Key]; ok {
			entries[i] = entry
			continue
		}
		index[it.Key] = len(entries)
		entries = append(entries, entry)
	}
	if err := e.store.UpsertMany(ctx, entries); err != nil {
		return &StorageError{Op: "set_bulk", Err: err}
	}
	e.log.Debug("set bulk", Fields{"partition": partition, "count": len(entries), "ttl": ttl})
	return nil
}

func (e *core[V]) get(ctx context.Context, partition, key string) (V, bool, error) {
	var zero V
	if e.closed.Load() {
		return zero, false, ErrClosed
	}
	entry, ok, err := e.store.Fetch(ctx, partition, key)
	if err != nil {
		return zero, false, &StorageError{Op: "get", Err: err}
	}
	if !ok {
		e.hooks.Miss(partition, key)
		return zero, false, nil
	}
	if !entry.ExpiresAt.After(e.now()) {
		// Lazy reaping: a dead row reads as absent and is dropped best-effort.
		if derr := e.store.Delete(ctx, partition, key); derr != nil {
			e.log.Warn("reap of expired row failed", Fields{"partition": partition, "key": key, "err": derr})
		}
		e.hooks.Expired(partition, key)
		return zero, false, nil
	}
	v, err := e.codec.Decode(entry.Value)
	if err != nil {
		e.hooks.DecodeError(partition, key, err)
		return zero, false, &CodecError{Key: key, Op: "decode", Err: err}
	}
	if terr := e.store.Touch(ctx, partition, key); terr != nil {
		e.log.Debug("hit count bump failed", Fields{"partition": partition, "key": key, "err": terr})
	}
	e.hooks.Hit(partition, key)
	return v, true, nil
}

func (e *core[V]) hits(ctx context.Context, partition, key string) (int64, bool, error) {
	if e.closed.Load() {
		return 0, false, ErrClosed
	}
	entry, ok, err := e.store.Fetch(ctx, partition, key)
	if err != nil {
		return 0, false, &StorageError{Op: "hits", Err: err}
	}
	if !ok {
		return 0, false, nil
	}
	return entry.Hits, true, nil
}

func (e *core[V]) delete(ctx context.Context, partition, key string) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := e.store.Delete(ctx, partition, key); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	e.log.Debug("delete", Fields{"partition": partition, "key": key})
	return nil
}

func (e *core[V]) deleteBulk(ctx context.Context, partition string, keys []string) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if len(keys) == 0 {
		return nil
	}
	if err := e.store.DeleteMany(ctx, partition, keys); err != nil {
		return &StorageError{Op: "delete_bulk", Err: err}
	}
	e.log.Debug("delete bulk", Fields{"partition": partition, "count": len(keys)})
	return nil
}

func (e *core[V]) flush(ctx context.Context, partition string) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := e.store.Purge(ctx, partition); err != nil {
		return &StorageError{Op: "flush", Err: err}
	}
	e.log.Debug("flushed partition", Fields{"partition": partition})
	return nil
}

func (e *core[V]) close(ctx context.Context) error {
	if e.closed.Swap(true) {
		return nil
	}
	e.tasks.close()
	return e.store.Close(ctx)
}

// cache is the blocking front-end: a partition view over a shared core.
type cache[V any] struct {
	core      *core[V]
	partition string
}

var _ Cache[struct{}] = (*cache[struct{}])(nil)

func (c *cache[V]) Init(ctx context.Context) error { return c.core.init(ctx) }

func (c *cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	return c.core.set(ctx, c.partition, key, value, ttl)
}

func (c *cache[V]) SetBulk(ctx context.Context, items []Item[V], ttl time.Duration) error {
	return c.core.setBulk(ctx, c.partition, items, ttl)
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	return c.core.get(ctx, c.partition, key)
}

func (c *cache[V]) Hits(ctx context.Context, key string) (int64, bool, error) {
	return c.core.hits(ctx, c.partition, key)
}

func (c *cache[V]) Delete(ctx context.Context, key string) error {
	return c.core.delete(ctx, c.partition, key)
}

func (c *cache[V]) DeleteBulk(ctx context.Context, keys []string) error {
	return c.core.deleteBulk(ctx, c.partition, keys)
}

func (c *cache[V]) Flush(ctx context.Context) error {
	return c.core.flush(ctx, c.partition)
}

func (c *cache[V]) Export(ctx context.Context, path string) error {
	return c.core.export(ctx, c.partition, path)
}

func (c *cache[V]) Import(ctx context.Context, path string) error {
	return c.core.importFile(ctx, c.partition, path)
}

func (c *cache[V]) WithPartition(name string) Cache[V] {
	return &cache[V]{core: c.core, partition: coalesce[string](name, DefaultPartition)}
}

func (c *cache[V]) Close(ctx context.Context) error { return c.core.close(ctx) }
