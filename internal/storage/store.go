package storage

//go:generate $MOCKGEN -source=store.go -destination=mocks/store_mock.go

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/vidstash/internal/config"
)

// Store is a durable key-value store.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	// The value is durable once Set returns.
	Set(ctx context.Context, key string, value []byte) error
	// Close releases the resources held by the store.
	Close() error
}

var (
	// ErrKeyNotFound indicates that nothing is stored under the requested key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrEmptyKey indicates that an operation was called with an empty key.
	ErrEmptyKey = errors.New("key cannot be empty")
	// ErrEmptyPath indicates that a persistent store was opened without a location.
	ErrEmptyPath = errors.New("storage path cannot be empty")
	// ErrStoreClosed indicates that the store was used after Close.
	ErrStoreClosed = errors.New("store is closed")
)

// Open creates the store selected by cfg.StorageBackend.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendFile:
		return NewFileStore(cfg.StoragePath)
	case config.StorageBackendDuckDB:
		return NewDuckDBStore(cfg.StoragePath)
	case config.StorageBackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: '%s'", config.ErrUnknownStorageBackend, cfg.StorageBackend)
	}
}
