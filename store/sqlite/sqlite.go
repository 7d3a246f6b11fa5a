// Package sqlite implements rowcache's Store on SQLite via database/sql and
// the pure-Go modernc.org/sqlite driver. Handy for tests and single-process
// durability; the schema and upsert semantics mirror the postgres store.
//
// Timestamps are stored as integer unix nanoseconds, values as BLOBs.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/unkn0wn-root/rowcache/internal/sqlutil"
	"github.com/unkn0wn-root/rowcache/store"
)

// DefaultTable is used when an empty table name is given.
const DefaultTable = "rowcache_entries"

type SQLite struct {
	db    *sql.DB
	table string
}

var _ store.Store = (*SQLite)(nil)

// Open opens (or creates) the database at path. An empty path or ":memory:"
// yields an in-memory database. The store owns the handle.
func Open(path, table string) (*SQLite, error) {
	if path == "" {
		path = ":memory:"
	}
	if table == "" {
		table = DefaultTable
	}
	if !sqlutil.ValidIdent(table) {
		return nil, fmt.Errorf("sqlite store: invalid table name %q", table)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Every pool connection to :memory: is a distinct database; pin the
		// pool to one connection so all queries see the same tables.
		db.SetMaxOpenConns(1)
	}
	// WAL keeps readers and the writer out of each other's way.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db, table: table}, nil
}

func (s *SQLite) Init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return err
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	partition_key TEXT NOT NULL,
	key TEXT NOT NULL,
	value BLOB NOT NULL,
	expires_at INTEGER NOT NULL,
	hits INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (partition_key, key)
)`, s.table)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return err
	}
	idx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_expires_at_idx ON %s (partition_key, expires_at)`,
		s.table, s.table)
	_, err := s.db.ExecContext(ctx, idx)
	return err
}

const upsertCols = 7

func (s *SQLite) upsertSQL(rows int) string {
	return fmt.Sprintf(`INSERT INTO %s (partition_key, key, value, expires_at, hits, created_at, updated_at)
VALUES %s
ON CONFLICT (partition_key, key) DO UPDATE SET
	value = excluded.value,
	expires_at = excluded.expires_at,
	hits = excluded.hits,
	updated_at = excluded.updated_at`,
		s.table, sqlutil.QuestionRows(upsertCols, rows))
}

func upsertArgs(dst []any, e store.Entry) []any {
	return append(dst, e.Partition, e.Key, e.Value,
		e.ExpiresAt.UnixNano(), e.Hits, e.CreatedAt.UnixNano(), e.UpdatedAt.UnixNano())
}

func (s *SQLite) Upsert(ctx context.Context, e store.Entry) error {
	_, err := s.db.ExecContext(ctx, s.upsertSQL(1), upsertArgs(nil, e)...)
	return err
}

func (s *SQLite) UpsertMany(ctx context.Context, entries []store.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	args := make([]any, 0, len(entries)*upsertCols)
	for _, e := range entries {
		args = upsertArgs(args, e)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.upsertSQL(len(entries)), args...); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *SQLite) Fetch(ctx context.Context, partition, key string) (store.Entry, bool, error) {
	q := fmt.Sprintf(`SELECT value, expires_at, hits, created_at, updated_at FROM %s
WHERE partition_key = ? AND key = ?`, s.table)
	e := store.Entry{Partition: partition, Key: key}
	var expires, created, updated int64
	err := s.db.QueryRowContext(ctx, q, partition, key).
		Scan(&e.Value, &expires, &e.Hits, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Entry{}, false, nil
	}
	if err != nil {
		return store.Entry{}, false, err
	}
	e.ExpiresAt = time.Unix(0, expires)
	e.CreatedAt = time.Unix(0, created)
	e.UpdatedAt = time.Unix(0, updated)
	return e, true, nil
}

func (s *SQLite) Touch(ctx context.Context, partition, key string) error {
	q := fmt.Sprintf(`UPDATE %s SET hits = hits + 1 WHERE partition_key = ? AND key = ?`, s.table)
	_, err := s.db.ExecContext(ctx, q, partition, key)
	return err
}

func (s *SQLite) Delete(ctx context.Context, partition, key string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE partition_key = ? AND key = ?`, s.table)
	_, err := s.db.ExecContext(ctx, q, partition, key)
	return err
}

func (s *SQLite) DeleteMany(ctx context.Context, partition string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE partition_key = ? AND key IN (%s)`,
		s.table, sqlutil.Questions(len(keys)))
	args := make([]any, 0, len(keys)+1)
	args = append(args, partition)
	for _, k := range keys {
		args = append(args, k)
	}
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *SQLite) Purge(ctx context.Context, partition string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE partition_key = ?`, s.table)
	_, err := s.db.ExecContext(ctx, q, partition)
	return err
}

func (s *SQLite) SelectLive(ctx context.Context, partition string, now time.Time) ([]store.Entry, error) {
	q := fmt.Sprintf(`SELECT key, value, expires_at, hits, created_at, updated_at FROM %s
WHERE partition_key = ? AND expires_at > ? ORDER BY key`, s.table)
	rows, err := s.db.QueryContext(ctx, q, partition, now.UnixNano())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Entry
	for rows.Next() {
		e := store.Entry{Partition: partition}
		var expires, created, updated int64
		if err := rows.Scan(&e.Key, &e.Value, &expires, &e.Hits, &created, &updated); err != nil {
			return nil, err
		}
		e.ExpiresAt = time.Unix(0, expires)
		e.CreatedAt = time.Unix(0, created)
		e.UpdatedAt = time.Unix(0, updated)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLite) Close(context.Context) error {
	return s.db.Close()
}
