// Package kv provides the durable string-keyed, string-valued storage that
// backs the versioned cache.
//
// Several backends implement the same small [Store] contract:
//
//   - memory: process-local map, the default and the one tests use
//   - file: one JSON document per key in a directory
//   - postgres: a single table accessed through a pgx connection pool
//   - sqlite: the same table in an embedded database file
//
// All backends are safe for concurrent use.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common storage errors.
var (
	ErrNotFound       = errors.New("kv: key not found")
	ErrEmptyKey       = errors.New("kv: key cannot be empty")
	ErrUnknownBackend = errors.New("kv: unknown backend")
)

// Store is a simple persistent key-value store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Keys enumerates every stored key, in no particular order.
	Keys(ctx context.Context) ([]string, error)

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	Dir         string // file backend directory
	DatabaseURL string // postgres connection string
	SQLitePath  string // sqlite database file
}

// Open builds the store selected by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(opts.Dir)
	case BackendPostgres:
		return NewPostgresStore(ctx, opts.DatabaseURL)
	case BackendSQLite:
		return NewSQLiteStore(ctx, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
