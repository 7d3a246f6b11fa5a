package rowcache

import (
	"context"
	"fmt"
	"os"

	"github.com/unkn0wn-root/rowcache/internal/transfer"
	st "github.com/unkn0wn-root/rowcache/store"
)

// export writes the partition's live rows to path as a transfer snapshot.
// Dead rows are skipped; expiry travels as an absolute timestamp.
func (e *core[V]) export(ctx context.Context, partition, path string) error {
	if e.closed.Load() {
		return ErrClosed
	}
	now := e.now().UTC()
	rows, err := e.store.SelectLive(ctx, partition, now)
	if err != nil {
		return &StorageError{Op: "export", Err: err}
	}
	recs := make([]transfer.Record, len(rows))
	for i, r := range rows {
		recs[i] = transfer.Record{
			Key:       r.Key,
			Value:     r.Value,
			ExpiresAt: r.ExpiresAt,
			Hits:      r.Hits,
		}
	}
	b, err := transfer.Encode(transfer.Snapshot{
		Partition:  partition,
		ExportedAt: now,
		Entries:    recs,
	})
	if err != nil {
		return fmt.Errorf("rowcache: encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("rowcache: write snapshot: %w", err)
	}
	e.log.Debug("exported partition", Fields{"partition": partition, "path": path, "count": len(recs)})
	return nil
}

// importFile upserts a snapshot's records into partition in one transaction.
// The target partition is the view's, not the one recorded in the file, so a
// snapshot can be restored under a different namespace. Every payload is
// decode-checked first; one bad record aborts the import with nothing
// committed. Records whose expiry already passed are stored anyway and read
// as expired.
func (e *core[V]) importFile(ctx context.Context, partition, path string) error {
	if e.closed.Load() {
		return ErrClosed
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("rowcache: read snapshot: %w", err)
	}
	snap, err := transfer.Decode(b)
	if err != nil {
		return &FormatError{Path: path, Err: err}
	}
	if len(snap.Entries) == 0 {
		return nil
	}

	now := e.now().UTC()
	entries := make([]st.Entry, 0, len(snap.Entries))
	index := make(map[string]int, len(snap.Entries))
	for _, r := range snap.Entries {
		if _, err := e.codec.Decode(r.Value); err != nil {
			return &CodecError{Key: r.Key, Op: "decode", Err: err}
		}
		entry := st.Entry{
			Partition: partition,
			Key:       r.Key,
			Value:     r.Value,
			ExpiresAt: r.ExpiresAt,
			Hits:      r.Hits,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if i, ok := index[r.Key]; ok {
			entries[i] = entry
			continue
		}
		index[r.Key] = len(entries)
		entries = append(entries, entry)
	}
	if err := e.store.UpsertMany(ctx, entries); err != nil {
		return &StorageError{Op: "import", Err: err}
	}
	e.log.Debug("imported partition", Fields{"partition": partition, "path": path, "count": len(entries)})
	return nil
}
