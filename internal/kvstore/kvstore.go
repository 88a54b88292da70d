// Package kvstore provides the durable key-value storage contract used by
// local-mode checklists, with SQLite-backed and in-memory implementations.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no record exists for the key.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is an asynchronous get/set/remove-by-key durable store.
// Values are opaque byte payloads; callers serialize their own records.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes the record for key. Removing an absent key is not
	// an error.
	Remove(ctx context.Context, key string) error

	// Keys returns all stored keys with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases underlying resources.
	Close() error
}
