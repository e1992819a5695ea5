package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/TimurManjosov/apollo/internal/toggle"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	namespace  TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL
)`

// SQLiteStore keeps the collection in a single row of a local SQLite file.
type SQLiteStore struct {
	conn      *sql.DB
	namespace string
}

// NewSQLiteStore wraps an open connection (see db.OpenSQLite) and creates the
// kv table if it is missing.
func NewSQLiteStore(ctx context.Context, conn *sql.DB, namespace string) (*SQLiteStore, error) {
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{conn: conn, namespace: namespaceOrDefault(namespace)}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]toggle.Toggle, error) {
	var value string
	err := s.conn.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE namespace = ?`, s.namespace,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	return decode([]byte(value))
}

func (s *SQLiteStore) Save(ctx context.Context, toggles []toggle.Toggle) error {
	data, err := encode(toggles)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO kv (namespace, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(namespace) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.namespace, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
