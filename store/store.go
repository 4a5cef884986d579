package store

import "errors"

// Common errors.
var (
	// ErrNotFound indicates the key does not exist.
	ErrNotFound = errors.New("key not found")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("store closed")
)

// Store is a durable mapping from string key to opaque record bytes.
// Callers marshal their own values; the store never inspects them.
type Store interface {
	// Get retrieves the value for a key.
	// Returns ErrNotFound if the key does not exist.
	Get(key string) ([]byte, error)

	// Set stores a value under a key, overwriting any existing value.
	// The write is durable before Set returns.
	Set(key string, value []byte) error

	// Contains reports whether a key exists.
	Contains(key string) (bool, error)

	// Keys returns all keys in the store. Order is unspecified.
	Keys() ([]string, error)

	// Close releases the store's resources. Operations after Close
	// return ErrClosed.
	Close() error
}
