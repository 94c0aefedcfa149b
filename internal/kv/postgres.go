package kv

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/averku/storefront/db"
)

const (
	getEntrySQL = `SELECT value FROM kv_entries WHERE key = $1`

	setEntrySQL = `INSERT INTO kv_entries (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	deleteEntrySQL = `DELETE FROM kv_entries WHERE key = $1`
)

var _ Store = (*Postgres)(nil)

// Postgres is a Store backed by a single PostgreSQL key-value table. It
// gives the server durable cart and session state across restarts.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the given database URL, verifies connectivity,
// and applies the embedded schema.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	if _, err := pool.Exec(ctx, db.Schema); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "apply schema")
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.pool.QueryRow(ctx, getEntrySQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "get %q", key)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	if _, err := p.pool.Exec(ctx, setEntrySQL, key, value); err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, deleteEntrySQL, key); err != nil {
		return errors.Wrapf(err, "delete %q", key)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
