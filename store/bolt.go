package store

import (
	"fmt"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

// recordsBucket is the single bucket holding all annotation records.
var recordsBucket = []byte("records")

// BoltStore implements Store on top of a bbolt database file.
// Safe for concurrent use within one process; bbolt's file lock prevents a
// second process from opening the same path.
type BoltStore struct {
	db     *bolt.DB
	closed atomic.Bool
}

// Ensure BoltStore implements Store.
var _ Store = (*BoltStore)(nil)

// NewBoltStore opens (or creates) the database file at path.
// Opening blocks up to one second waiting for another process to release
// the file lock.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(recordsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize store %s: %w", path, err)
	}

	return &BoltStore{db: db}, nil
}

// Get retrieves the value for a key.
func (s *BoltStore) Get(key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(recordsBucket).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// The slice is only valid inside the transaction.
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores a value under a key. The enclosing bbolt transaction commits
// before Set returns, so the write is durable on return.
func (s *BoltStore) Set(key string, value []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(recordsBucket).Put([]byte(key), value)
	})
}

// Contains reports whether a key exists.
func (s *BoltStore) Contains(key string) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}

	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(recordsBucket).Get([]byte(key)) != nil
		return nil
	})
	return found, err
}

// Keys returns all keys in the store.
func (s *BoltStore) Keys() ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(recordsBucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Close closes the underlying database file.
func (s *BoltStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// Path returns the filesystem path of the database file.
func (s *BoltStore) Path() string {
	return s.db.Path()
}
