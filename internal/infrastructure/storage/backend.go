package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/internal/config"
)

var ErrNotInitialized = errors.New("storage backend not initialized")

// Backend is namespaced key/value storage for small JSON documents. Each browser
// profile gets its own namespace, so a namespace plays the role of one browser's
// local storage.
type Backend interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, namespace, key string) (string, bool, error)

	Set(ctx context.Context, namespace, key, value string) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, namespace, key string) error

	Ping(ctx context.Context) error

	Close() error
}

// Open builds the backend selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory, "":
		return NewMemoryBackend(), nil
	case config.StorageRedis:
		return NewRedisBackend(ctx, cfg.Redis, cfg.Storage.TTL)
	case config.StoragePostgres:
		db, err := ConnectPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		backend := NewPostgresBackend(db)
		if err := backend.EnsureSchema(ctx); err != nil {
			_ = backend.Close()
			return nil, err
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
