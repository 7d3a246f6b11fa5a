// Package postgres implements rowcache's Store on PostgreSQL via database/sql
// and github.com/lib/pq. Upserts rely on INSERT ... ON CONFLICT against the
// (partition_key, key) primary key, so concurrent writers race safely at the
// row level with last-commit-wins semantics.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/unkn0wn-root/rowcache/internal/sqlutil"
	"github.com/unkn0wn-root/rowcache/store"
)

// DefaultTable is used when Config.Table is empty.
const DefaultTable = "rowcache_entries"

var ErrNilDB = errors.New("postgres store: nil db handle")

// Config configures a Postgres store over an existing *sql.DB.
type Config struct {
	DB      *sql.DB
	Table   string // defaults to DefaultTable; must be a plain SQL identifier
	CloseDB bool   // set true only if this store exclusively owns the handle
}

type Postgres struct {
	db      *sql.DB
	table   string
	closeDB bool
}

var _ store.Store = (*Postgres)(nil)

// New wraps an existing database handle. Pooling, timeouts and connection
// limits stay under the caller's control on the *sql.DB itself.
func New(cfg Config) (*Postgres, error) {
	if cfg.DB == nil {
		return nil, ErrNilDB
	}
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	if !sqlutil.ValidIdent(table) {
		return nil, fmt.Errorf("postgres store: invalid table name %q", table)
	}
	return &Postgres{db: cfg.DB, table: table, closeDB: cfg.CloseDB}, nil
}

// Open opens a new connection pool for connStr and returns a store that owns
// it (Close will close the pool).
func Open(connStr, table string) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	p, err := New(Config{DB: db, Table: table, CloseDB: true})
	if err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) Init(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return err
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	partition_key TEXT NOT NULL,
	key TEXT NOT NULL,
	value BYTEA NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	hits BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (partition_key, key)
)`, p.table)
	if _, err := p.db.ExecContext(ctx, ddl); err != nil {
		return err
	}
	idx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_expires_at_idx ON %s (partition_key, expires_at)`,
		p.table, p.table)
	_, err := p.db.ExecContext(ctx, idx)
	return err
}

const upsertCols = 7

func (p *Postgres) upsertSQL(rows int) string {
	return fmt.Sprintf(`INSERT INTO %s (partition_key, key, value, expires_at, hits, created_at, updated_at)
VALUES %s
ON CONFLICT (partition_key, key) DO UPDATE SET
	value = EXCLUDED.value,
	expires_at = EXCLUDED.expires_at,
	hits = EXCLUDED.hits,
	updated_at = EXCLUDED.updated_at`,
		p.table, sqlutil.DollarRows(upsertCols, rows))
}

func upsertArgs(dst []any, e store.Entry) []any {
	return append(dst, e.Partition, e.Key, e.Value, e.ExpiresAt, e.Hits, e.CreatedAt, e.UpdatedAt)
}

func (p *Postgres) Upsert(ctx context.Context, e store.Entry) error {
	_, err := p.db.ExecContext(ctx, p.upsertSQL(1), upsertArgs(nil, e)...)
	return err
}

// UpsertMany writes the whole batch as one multi-row INSERT inside a
// transaction: one round trip, all-or-nothing.
func (p *Postgres) UpsertMany(ctx context.Context, entries []store.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	args := make([]any, 0, len(entries)*upsertCols)
	for _, e := range entries {
		args = upsertArgs(args, e)
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, p.upsertSQL(len(entries)), args...); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (p *Postgres) Fetch(ctx context.Context, partition, key string) (store.Entry, bool, error) {
	q := fmt.Sprintf(`SELECT value, expires_at, hits, created_at, updated_at FROM %s
WHERE partition_key = $1 AND key = $2`, p.table)
	e := store.Entry{Partition: partition, Key: key}
	err := p.db.QueryRowContext(ctx, q, partition, key).
		Scan(&e.Value, &e.ExpiresAt, &e.Hits, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Entry{}, false, nil
	}
	if err != nil {
		return store.Entry{}, false, err
	}
	return e, true, nil
}

func (p *Postgres) Touch(ctx context.Context, partition, key string) error {
	q := fmt.Sprintf(`UPDATE %s SET hits = hits + 1 WHERE partition_key = $1 AND key = $2`, p.table)
	_, err := p.db.ExecContext(ctx, q, partition, key)
	return err
}

func (p *Postgres) Delete(ctx context.Context, partition, key string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE partition_key = $1 AND key = $2`, p.table)
	_, err := p.db.ExecContext(ctx, q, partition, key)
	return err
}

func (p *Postgres) DeleteMany(ctx context.Context, partition string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE partition_key = $1 AND key = ANY($2)`, p.table)
	_, err := p.db.ExecContext(ctx, q, partition, pq.Array(keys))
	return err
}

func (p *Postgres) Purge(ctx context.Context, partition string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE partition_key = $1`, p.table)
	_, err := p.db.ExecContext(ctx, q, partition)
	return err
}

func (p *Postgres) SelectLive(ctx context.Context, partition string, now time.Time) ([]store.Entry, error) {
	q := fmt.Sprintf(`SELECT key, value, expires_at, hits, created_at, updated_at FROM %s
WHERE partition_key = $1 AND expires_at > $2 ORDER BY key`, p.table)
	rows, err := p.db.QueryContext(ctx, q, partition, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Entry
	for rows.Next() {
		e := store.Entry{Partition: partition}
		if err := rows.Scan(&e.Key, &e.Value, &e.ExpiresAt, &e.Hits, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *Postgres) Close(context.Context) error {
	if p.closeDB {
		return p.db.Close()
	}
	return nil
}
