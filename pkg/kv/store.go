// Package kv defines the key-value contract the todo store persists
// through, plus in-memory, SQLite, and PostgreSQL implementations.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// Store is the contract for durable key-value persistence. Values are
// opaque documents; index semantics live above this layer.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Has reports whether key is present.
	Has(ctx context.Context, key string) (bool, error)

	// Keys returns all keys currently present.
	Keys(ctx context.Context) ([]string, error)

	// Clear removes everything.
	Clear(ctx context.Context) error
}
