package rowcache

import (
	"context"
	"sync"
	"time"
)

// Task is a handle to one in-flight operation of the concurrent engine.
// The zero Task is not valid; tasks come from AsyncCache methods only.
type Task[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Done is closed when the operation completes, for select loops.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait blocks until the operation completes or ctx is done. Waiting is
// separate from the operation itself: a ctx expiring here abandons the wait,
// it does not cancel the operation (cancel the issue-time ctx for that).
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.val, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Err returns the operation's error once Done is closed, nil before.
func (t *Task[T]) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Op is a task carrying no value.
type Op = Task[struct{}]

// taskGroup tracks in-flight tasks. Issuance is serialized against close so
// Add never races Wait: issuers hold the read lock while registering, close
// flips the flag under the write lock and only then waits.
type taskGroup struct {
	mu     sync.RWMutex
	wg     sync.WaitGroup
	closed bool
}

// add registers one task, or reports false when the group is closed.
func (g *taskGroup) add() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		return false
	}
	g.wg.Add(1)
	return true
}

func (g *taskGroup) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.wg.Wait()
}

// run launches fn on its own goroutine. Issued against a closed group, the
// task completes immediately with ErrClosed. A ctx already canceled at issue
// time fails the task before any store I/O; after that, cancellation is the
// store's business (database/sql honors the ctx mid-query).
func run[T any](ctx context.Context, g *taskGroup, fn func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	if !g.add() {
		t.err = ErrClosed
		close(t.done)
		return t
	}
	go func() {
		defer g.wg.Done()
		defer close(t.done)
		if err := ctx.Err(); err != nil {
			t.err = err
			return
		}
		t.val, t.err = fn(ctx)
	}()
	return t
}

func runOp(ctx context.Context, g *taskGroup, fn func(context.Context) error) *Op {
	return run(ctx, g, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
}

// asyncCache is the concurrent front-end: same core, one goroutine per issued
// operation. Completion order is whatever the store yields; callers needing
// ordering wait on each task before issuing the next.
type asyncCache[V any] struct {
	core      *core[V]
	partition string
}

var _ AsyncCache[struct{}] = (*asyncCache[struct{}])(nil)

func (a *asyncCache[V]) Init(ctx context.Context) *Op {
	return runOp(ctx, &a.core.tasks, func(ctx context.Context) error {
		return a.core.init(ctx)
	})
}

func (a *asyncCache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) *Op {
	return runOp(ctx, &a.core.tasks, func(ctx context.Context) error {
		return a.core.set(ctx, a.partition, key, value, ttl)
	})
}

func (a *asyncCache[V]) SetBulk(ctx context.Context, items []Item[V], ttl time.Duration) *Op {
	return runOp(ctx, &a.core.tasks, func(ctx context.Context) error {
		return a.core.setBulk(ctx, a.partition, items, ttl)
	})
}

func (a *asyncCache[V]) Get(ctx context.Context, key string) *Task[Lookup[V]] {
	return run(ctx, &a.core.tasks, func(ctx context.Context) (Lookup[V], error) {
		v, ok, err := a.core.get(ctx, a.partition, key)
		return Lookup[V]{Value: v, Found: ok}, err
	})
}

func (a *asyncCache[V]) Hits(ctx context.Context, key string) *Task[Lookup[int64]] {
	return run(ctx, &a.core.tasks, func(ctx context.Context) (Lookup[int64], error) {
		n, ok, err := a.core.hits(ctx, a.partition, key)
		return Lookup[int64]{Value: n, Found: ok}, err
	})
}

func (a *asyncCache[V]) Delete(ctx context.Context, key string) *Op {
	return runOp(ctx, &a.core.tasks, func(ctx context.Context) error {
		return a.core.delete(ctx, a.partition, key)
	})
}

func (a *asyncCache[V]) DeleteBulk(ctx context.Context, keys []string) *Op {
	return runOp(ctx, &a.core.tasks, func(ctx context.Context) error {
		return a.core.deleteBulk(ctx, a.partition, keys)
	})
}

func (a *asyncCache[V]) Flush(ctx context.Context) *Op {
	return runOp(ctx, &a.core.tasks, func(ctx context.Context) error {
		return a.core.flush(ctx, a.partition)
	})
}

func (a *asyncCache[V]) Export(ctx context.Context, path string) *Op {
	return runOp(ctx, &a.core.tasks, func(ctx context.Context) error {
		return a.core.export(ctx, a.partition, path)
	})
}

func (a *asyncCache[V]) Import(ctx context.Context, path string) *Op {
	return runOp(ctx, &a.core.tasks, func(ctx context.Context) error {
		return a.core.importFile(ctx, a.partition, path)
	})
}

func (a *asyncCache[V]) WithPartition(name string) AsyncCache[V] {
	return &asyncCache[V]{core: a.core, partition: coalesce[string](name, DefaultPartition)}
}

func (a *asyncCache[V]) Close(ctx context.Context) error { return a.core.close(ctx) }
