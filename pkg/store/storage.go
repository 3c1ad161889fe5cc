// Package store provides durable key-value storage backends and persisted
// reactive value containers built on top of them.
//
// A Storage holds JSON-serialized values under fixed string keys. It plays
// the role that browser local storage plays for a single-page application:
// values survive process restarts and are reloaded when a container with the
// same key is created again.
//
// # Backends
//
//   - FileStorage keeps one file per key in a directory of an afero.Fs.
//   - RedisStorage keeps keys in Redis under a configurable prefix.
//
// A nil Storage is valid wherever a Storage is accepted and means values are
// held in memory only.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Storage.Get when no value is stored under a key.
var ErrNotFound = errors.New("key not found")

// Storage is a durable key-value store for serialized values.
type Storage interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
