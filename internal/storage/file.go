package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/vidstash/internal/constants"
	"github.com/oshokin/vidstash/internal/logger"
	"github.com/oshokin/vidstash/internal/utils"
)

// FileStore keeps one file per key inside a directory.
// Writes go to a ".part" file that is synced and renamed over the target,
// so a crash never leaves a half-written value behind.
type FileStore struct {
	dir    string
	mu     sync.RWMutex
	closed bool
}

// NewFileStore creates the directory if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, ErrEmptyPath
	}

	if err := os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
		return nil, fmt.Errorf("failed to create storage directory '%s': %w", dir, err)
	}

	return &FileStore{dir: dir}, nil
}

// Get reads the file for key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	value, err := os.ReadFile(s.pathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrKeyNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read key '%s': %w", key, err)
	}

	return value, nil
}

// Set writes value for key through a temporary file.
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	path := s.pathFor(key)
	tempPath := path + constants.ExtensionPart

	if err := writeSynced(tempPath, value); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warnf(ctx, "Failed to remove temporary file '%s': %v", tempPath, removeErr)
		}

		return fmt.Errorf("failed to write key '%s': %w", key, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to commit key '%s': %w", key, err)
	}

	return nil
}

// Close marks the store closed.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	return nil
}

func (s *FileStore) pathFor(key string) string {
	return filepath.Join(s.dir, utils.SanitizeFilename(key)+constants.ExtensionJSON)
}

func writeSynced(path string, value []byte) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.DefaultFilePermissions)
	if err != nil {
		return err
	}

	if _, err = file.Write(value); err != nil {
		file.Close() //nolint:errcheck,gosec // The write error is more relevant.

		return err
	}

	if err = file.Sync(); err != nil {
		file.Close() //nolint:errcheck,gosec // The sync error is more relevant.

		return err
	}

	return file.Close()
}
