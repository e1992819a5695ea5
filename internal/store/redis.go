package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/TimurManjosov/apollo/internal/toggle"
)

// RedisStore keeps the collection as a string value under the namespace key.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore connects using a redis:// URL and pings the server.
func NewRedisStore(ctx context.Context, url, namespace string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client, namespace: namespaceOrDefault(namespace)}, nil
}

func (r *RedisStore) Load(ctx context.Context) ([]toggle.Toggle, error) {
	data, err := r.client.Get(ctx, r.namespace).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return decode(data)
}

func (r *RedisStore) Save(ctx context.Context, toggles []toggle.Toggle) error {
	data, err := encode(toggles)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.namespace, data, 0).Err(); err != nil {
		return fmt.Errorf("set collection: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
