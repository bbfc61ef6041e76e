package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Registers the "duckdb" database/sql driver.
	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/oshokin/vidstash/internal/constants"
)

const duckDBDriverName = "duckdb"

const (
	createKVTableQuery = `CREATE TABLE IF NOT EXISTS kv_store (
	key VARCHAR PRIMARY KEY,
	value VARCHAR NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
)`
	selectValueQuery = `SELECT value FROM kv_store WHERE key = ?`
	upsertValueQuery = `INSERT OR REPLACE INTO kv_store (key, value, updated_at) VALUES (?, ?, current_timestamp)`
)

// DuckDBStore keeps values in a single table of an embedded DuckDB database.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore opens (or creates) the database file at path and prepares the table.
func NewDuckDBStore(path string) (*DuckDBStore, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
			return nil, fmt.Errorf("failed to create database directory '%s': %w", dir, err)
		}
	}

	db, err := sql.Open(duckDBDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb database '%s': %w", path, err)
	}

	// DuckDB allows a single writer per file; one connection keeps writes ordered.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(createKVTableQuery); err != nil {
		db.Close() //nolint:errcheck,gosec // The schema error is more relevant.

		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}

	return &DuckDBStore{db: db}, nil
}

// Get returns the value stored under key.
func (s *DuckDBStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	var value string

	err := s.db.QueryRowContext(ctx, selectValueQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}

	if err != nil {
		return nil, s.wrap("read", key, err)
	}

	return []byte(value), nil
}

// Set stores value under key.
func (s *DuckDBStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}

	if _, err := s.db.ExecContext(ctx, upsertValueQuery, key, string(value)); err != nil {
		return s.wrap("write", key, err)
	}

	return nil
}

// Close closes the database.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}

func (s *DuckDBStore) wrap(op, key string, err error) error {
	return fmt.Errorf("failed to %s key '%s': %w", op, key, err)
}
