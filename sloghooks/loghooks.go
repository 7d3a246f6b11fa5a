// Package sloghooks implements rowcache.Hooks on top of log/slog, with
// per-event sampling so hit/miss traffic does not flood the log.
package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/rowcache"
)

type Options struct {
	// Sampling for the high-volume events; 0/1 = log all.
	HitEvery  uint64
	MissEvery uint64
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
}

var _ rowcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(partition, key string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("rowcache.hit", "partition", partition, "key", key)
}

func (h *Hooks) Miss(partition, key string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("rowcache.miss", "partition", partition, "key", key)
}

func (h *Hooks) Expired(partition, key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("rowcache.expired", "partition", partition, "key", key)
}

func (h *Hooks) DecodeError(partition, key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("rowcache.decode_error",
		"partition", partition,
		"key", key,
		"err", err)
}
