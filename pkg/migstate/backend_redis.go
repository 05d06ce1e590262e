package migstate

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores the document bytes under a single Redis key.
// It is designed to work with github.com/redis/go-redis/v9.
type RedisBackend struct {
	client *redis.Client
	prefix string // Optional key prefix (e.g., "migstate:")
	name   string
}

// NewRedisBackend creates a Redis-backed document location.
// The prefix parameter allows namespacing keys to avoid conflicts.
// If prefix is empty, "migstate:" is used by default.
func NewRedisBackend(client *redis.Client, prefix, name string) *RedisBackend {
	if prefix == "" {
		prefix = "migstate:"
	}
	return &RedisBackend{
		client: client,
		prefix: prefix,
		name:   name,
	}
}

// NewRedisBackendFromURL creates a Redis backend from a connection URL.
// Example: "redis://localhost:6379/0" or "redis://:password@localhost:6379/1"
func NewRedisBackendFromURL(url, prefix, name string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return NewRedisBackend(redis.NewClient(opts), prefix, name), nil
}

func (b *RedisBackend) key() string {
	return b.prefix + b.name
}

func (b *RedisBackend) Exists(ctx context.Context) (bool, error) {
	n, err := b.client.Exists(ctx, b.key()).Result()
	if err != nil {
		return false, &BackendUnavailableError{Backend: "redis", Op: "exists", Location: b.String(), Cause: err}
	}
	return n > 0, nil
}

func (b *RedisBackend) Read(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key()).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, b.String())
	}
	if err != nil {
		return nil, &BackendUnavailableError{Backend: "redis", Op: "read", Location: b.String(), Cause: err}
	}
	return data, nil
}

func (b *RedisBackend) Write(ctx context.Context, data []byte) error {
	// No TTL: the ledger lives until the caller removes it.
	if err := b.client.Set(ctx, b.key(), data, 0).Err(); err != nil {
		return &BackendUnavailableError{Backend: "redis", Op: "write", Location: b.String(), Cause: err}
	}
	return nil
}

func (b *RedisBackend) String() string {
	return "redis:" + b.key()
}

// Ping checks if the Redis connection is alive.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
