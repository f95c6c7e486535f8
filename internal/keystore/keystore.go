// Package keystore provides the flat key/value backends that hold wallet
// secrets: the OS keyring, PostgreSQL, process memory, and an AES-GCM
// wrapper that seals values for any of them.
//
// A backend has no notion of records. Every structure the credential store
// needs is encoded in key names.
package keystore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when no value is stored under the key.
	ErrNotFound = errors.New("keystore: not found")
	// ErrSealBroken is returned by SealedBackend when a stored value fails authentication.
	ErrSealBroken = errors.New("keystore: sealed value failed authentication")
	// ErrReservedKey is returned when a caller tries to write a key the backend uses internally.
	ErrReservedKey = errors.New("keystore: reserved key")
)

// Backend is a secure flat key/value store scoped to one application namespace.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists every key currently stored.
	Keys(ctx context.Context) ([]string, error)
}

// Inserter is implemented by backends that can insert a value only when the
// key is absent as one atomic step.
type Inserter interface {
	// SetIfAbsent stores value and returns true, or returns false without
	// writing when key already holds a value.
	SetIfAbsent(ctx context.Context, key string, value []byte) (bool, error)
}

// BulkDeleter is implemented by backends that can remove many keys at once.
type BulkDeleter interface {
	// DeleteKeys removes every listed key and returns how many were present.
	DeleteKeys(ctx context.Context, keys []string) (int, error)
}

// SetIfAbsent writes value under key unless a value is already present.
// Backends implementing Inserter do this atomically. For the others the
// check and the write are two calls and callers must serialise them.
func SetIfAbsent(ctx context.Context, b Backend, key string, value []byte) (bool, error) {
	if ins, ok := b.(Inserter); ok {
		return ins.SetIfAbsent(ctx, key, value)
	}

	_, err := b.Get(ctx, key)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, ErrNotFound):
		return false, err
	}
	if err := b.Set(ctx, key, value); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteKeys removes keys from b, in bulk when the backend supports it.
func DeleteKeys(ctx context.Context, b Backend, keys []string) (int, error) {
	if bd, ok := b.(BulkDeleter); ok {
		return bd.DeleteKeys(ctx, keys)
	}

	removed := 0
	for _, k := range keys {
		if err := b.Delete(ctx, k); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Exists reports whether key holds a value. A value that fails to unseal is
// still present.
func Exists(ctx context.Context, b Backend, key string) (bool, error) {
	_, err := b.Get(ctx, key)
	switch {
	case err == nil, errors.Is(err, ErrSealBroken):
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
