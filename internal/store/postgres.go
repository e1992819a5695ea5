package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TimurManjosov/apollo/internal/toggle"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS kv (
	namespace  TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps the collection as a JSONB row keyed by namespace.
type PostgresStore struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewPostgresStore creates the kv table if needed. The store takes ownership of
// the pool and closes it on Close.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, namespace string) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool, namespace: namespaceOrDefault(namespace)}, nil
}

func (p *PostgresStore) Load(ctx context.Context) ([]toggle.Toggle, error) {
	var value []byte
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM kv WHERE namespace = $1`, p.namespace,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	return decode(value)
}

func (p *PostgresStore) Save(ctx context.Context, toggles []toggle.Toggle) error {
	data, err := encode(toggles)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO kv (namespace, value, updated_at) VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (namespace) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		p.namespace, string(data),
	)
	if err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
