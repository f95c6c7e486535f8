// Package seedstore is the credential store of the wallet. It keeps the seed,
// the mnemonic phrase, the birthday height, the exportable key list and the
// per-identity key bundles in a keystore.Backend.
//
// Sensitive values are write-once: an import fails with ErrAlreadyImported
// while a value exists, and replacing a secret takes an explicit delete
// followed by a new import. The key list is the only value that is
// overwritten in place.
package seedstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/seedkeeper/internal/keystore"
	"github.com/atinyakov/seedkeeper/internal/models"
	"go.uber.org/zap"
)

// Store enforces write-once, read-many, explicit-delete semantics over a flat
// backend. Create one per process with New and share it; it is safe for
// concurrent use.
type Store struct {
	backend keystore.Backend
	log     *zap.Logger
	locks   *keyMutex
}

// New returns a Store over backend. Secret values are never logged.
func New(backend keystore.Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		backend: backend,
		log:     log,
		locks:   newKeyMutex(),
	}
}

// ImportSeed stores the raw seed bytes.
func (s *Store) ImportSeed(ctx context.Context, seed []byte) error {
	return s.importOnce(ctx, "seed", keySeed, seed)
}

// ExportSeed returns the stored seed or ErrUninitialized.
func (s *Store) ExportSeed(ctx context.Context) ([]byte, error) {
	return s.read(ctx, "seed", keySeed)
}

// ImportPhrase stores the mnemonic phrase. The phrase is not validated here;
// callers check it with mnemonic.IsValid first.
func (s *Store) ImportPhrase(ctx context.Context, phrase string) error {
	return s.importOnce(ctx, "phrase", keyPhrase, []byte(phrase))
}

// ExportPhrase returns the stored phrase or ErrUninitialized.
func (s *Store) ExportPhrase(ctx context.Context) (string, error) {
	raw, err := s.read(ctx, "phrase", keyPhrase)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ImportBirthday stores the wallet birthday as a decimal string.
func (s *Store) ImportBirthday(ctx context.Context, height models.BlockHeight) error {
	return s.importOnce(ctx, "birthday", keyBirthday, encodeHeight(height))
}

// ExportBirthday returns the birthday, ErrUninitialized when none is stored,
// or ErrCorrupt when the stored text is not a non-negative integer.
func (s *Store) ExportBirthday(ctx context.Context) (models.BlockHeight, error) {
	raw, err := s.read(ctx, "birthday", keyBirthday)
	if err != nil {
		return 0, err
	}
	return decodeHeight(raw)
}

// SaveKeys replaces the exportable key list.
func (s *Store) SaveKeys(ctx context.Context, keys []string) error {
	raw, err := encodeKeys(keys)
	if err != nil {
		return err
	}
	if err := s.backend.Set(ctx, keyList, raw); err != nil {
		return fmt.Errorf("save keys: %w", err)
	}
	s.log.Debug("key list saved", zap.Int("count", len(keys)))
	return nil
}

// GetKeys returns the key list in saved order, or nil if none was ever saved.
func (s *Store) GetKeys(ctx context.Context) ([]string, error) {
	raw, err := s.read(ctx, "keys", keyList)
	if errors.Is(err, ErrUninitialized) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeKeys(raw)
}

// DeleteSeed removes the seed. Removing an absent seed is not an error.
func (s *Store) DeleteSeed(ctx context.Context) error {
	return s.delete(ctx, "seed", keySeed)
}

// DeletePhrase removes the mnemonic phrase.
func (s *Store) DeletePhrase(ctx context.Context) error {
	return s.delete(ctx, "phrase", keyPhrase)
}

// DeleteKeys removes the key list.
func (s *Store) DeleteKeys(ctx context.Context) error {
	return s.delete(ctx, "keys", keyList)
}

// DeleteBirthday removes the wallet birthday.
func (s *Store) DeleteBirthday(ctx context.Context) error {
	return s.delete(ctx, "birthday", keyBirthday)
}

// WipeAll deletes every key present in the backend, including identity
// records and entries this package did not write. It returns the number of
// keys removed. There is no confirmation step here; asking the user is the
// caller's job.
func (s *Store) WipeAll(ctx context.Context) (int, error) {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("wipe: list keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	removed, err := keystore.DeleteKeys(ctx, s.backend, keys)
	if err != nil {
		return removed, fmt.Errorf("wipe: %w", err)
	}
	s.log.Warn("wallet wiped", zap.Int("removed", removed))
	return removed, nil
}

// importOnce writes value under key unless the key already holds a value.
func (s *Store) importOnce(ctx context.Context, class, key string, value []byte) error {
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	ok, err := keystore.SetIfAbsent(ctx, s.backend, key, value)
	if err != nil {
		return fmt.Errorf("import %s: %w", class, err)
	}
	if !ok {
		return fmt.Errorf("import %s: %w", class, ErrAlreadyImported)
	}
	s.log.Info("secret imported", zap.String("secret", class))
	return nil
}

// read maps backend failures onto the store's error kinds.
func (s *Store) read(ctx context.Context, class, key string) ([]byte, error) {
	raw, err := s.backend.Get(ctx, key)
	switch {
	case err == nil:
		return raw, nil
	case errors.Is(err, keystore.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", class, ErrUninitialized)
	case errors.Is(err, keystore.ErrSealBroken):
		return nil, fmt.Errorf("%s: %w: %v", class, ErrCorrupt, err)
	default:
		return nil, fmt.Errorf("read %s: %w", class, err)
	}
}

func (s *Store) delete(ctx context.Context, class, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", class, err)
	}
	s.log.Info("secret deleted", zap.String("secret", class))
	return nil
}
