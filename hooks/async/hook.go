// Package asynchook decouples hook consumers from the cache's hot path:
// events go through a bounded queue to worker goroutines and are dropped
// when the queue is full.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{HitEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cc, _ := rowcache.New[Session](rowcache.Options[Session]{
//	    Store: st,
//	    Codec: codec.JSON[Session]{},
//	    Hooks: hooks, // or `raw` if inline delivery is fine
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/rowcache"
)

type Hooks struct {
	inner rowcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ rowcache.Hooks = (*Hooks)(nil)

func New(inner rowcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Hit(p, k string)     { h.try(func() { h.inner.Hit(p, k) }) }
func (h *Hooks) Miss(p, k string)    { h.try(func() { h.inner.Miss(p, k) }) }
func (h *Hooks) Expired(p, k string) { h.try(func() { h.inner.Expired(p, k) }) }
func (h *Hooks) DecodeError(p, k string, err error) {
	h.try(func() { h.inner.DecodeError(p, k, err) })
}
