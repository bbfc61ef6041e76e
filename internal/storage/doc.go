// Package storage provides the durable key-value stores behind the persisted catalog.
// Values are opaque byte blobs. Three backends exist: one file per key,
// an embedded DuckDB database, and an in-memory map for ephemeral sessions and tests.
package storage
