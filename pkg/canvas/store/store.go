// Package store provides namespaced key/value persistence for
// advisory state: user reflections and thread snapshots. Writes are
// single-key upserts with last-writer-wins semantics; no cross-key
// transactions are offered or needed.
package store

import (
	"errors"
	"strings"
	"time"
)

// Store persists values under a (namespace, key) pair.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves a value. Returns ErrNotFound if absent.
	Get(namespace []string, key string) ([]byte, error)

	// Put stores a value, overwriting any existing one.
	Put(namespace []string, key string, value []byte) error

	// Delete removes a value. Returns nil if it doesn't exist.
	Delete(namespace []string, key string) error

	// List returns metadata for every key in the namespace, ordered
	// by key. Returns an empty slice (not an error) for an empty or
	// unknown namespace.
	List(namespace []string) ([]Info, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides record metadata without loading the value.
type Info struct {
	Namespace []string
	Key       string
	UpdatedAt time.Time
	Size      int64
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates no value exists for the key.
	ErrNotFound = errors.New("record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("store closed")
)

// namespaceSeparator joins namespace segments into one storage key.
// U+001F (unit separator) cannot appear in reasonable namespace parts.
const namespaceSeparator = "\x1f"

// joinNamespace flattens a namespace path for storage.
func joinNamespace(namespace []string) string {
	return strings.Join(namespace, namespaceSeparator)
}

// splitNamespace reverses joinNamespace.
func splitNamespace(flat string) []string {
	if flat == "" {
		return nil
	}
	return strings.Split(flat, namespaceSeparator)
}
