package store

import (
	"context"
	"fmt"

	mydb "github.com/TimurManjosov/apollo/internal/db"
)

// Options selects and configures a backend.
type Options struct {
	// Type is one of "memory", "file", "sqlite", "postgres", "redis".
	Type string
	// DSN is backend specific: a directory for file, a file path for sqlite,
	// a postgres:// DSN or a redis:// URL.
	DSN       string
	Namespace string
}

// NewStore creates a new store based on opts.Type.
func NewStore(ctx context.Context, opts Options) (Store, error) {
	switch opts.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(opts.DSN, opts.Namespace)
	case "sqlite":
		conn, err := mydb.OpenSQLite(opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		s, err := NewSQLiteStore(ctx, conn, opts.Namespace)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		pool, err := mydb.NewPool(ctx, opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		s, err := NewPostgresStore(ctx, pool, opts.Namespace)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return s, nil
	case "redis":
		return NewRedisStore(ctx, opts.DSN, opts.Namespace)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", opts.Type)
	}
}
