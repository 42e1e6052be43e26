// Package storage provides the key-value stores behind the account registry.
package storage

import "errors"

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// DB is the interface for key-value storage.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach visits every key with the given prefix in ascending key order.
	// The callback receives copies. A non-nil error from fn stops iteration
	// and is returned.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}

// Open returns a Badger store at path, or an in-memory store when path is empty.
func Open(path string) (DB, error) {
	if path == "" {
		return NewMemory(), nil
	}
	return NewBadger(path)
}
