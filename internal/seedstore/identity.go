package seedstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/seedkeeper/internal/keystore"
	"github.com/atinyakov/seedkeeper/internal/models"
	"go.uber.org/zap"
)

// SaveIdentity stores the key bundle of identity id as three write-once
// fields: height, phrase and spending key.
//
// If any of the three already exists the call fails with ErrAlreadyImported
// and writes nothing. If a backend write fails part way, the fields written
// by this call are removed again; fields that predate the call are left alone.
// Other processes sharing the backend are only excluded field by field.
func (s *Store) SaveIdentity(ctx context.Context, id, phrase string, height models.BlockHeight, spendingKey string) error {
	keys := keysForIdentity(id)

	s.locks.Lock(keys.namespace)
	defer s.locks.Unlock(keys.namespace)

	for _, k := range keys.all() {
		exists, err := keystore.Exists(ctx, s.backend, k)
		if err != nil {
			return fmt.Errorf("save identity: %w", err)
		}
		if exists {
			return fmt.Errorf("save identity: %w", ErrAlreadyImported)
		}
	}

	fields := []struct {
		key   string
		value []byte
	}{
		{keys.height, encodeHeight(height)},
		{keys.phrase, []byte(phrase)},
		{keys.spending, []byte(spendingKey)},
	}

	written := make([]string, 0, len(fields))
	for _, f := range fields {
		ok, err := keystore.SetIfAbsent(ctx, s.backend, f.key, f.value)
		if err == nil && !ok {
			err = ErrAlreadyImported
		}
		if err != nil {
			s.rollback(ctx, id, written)
			return fmt.Errorf("save identity: %w", err)
		}
		written = append(written, f.key)
	}

	s.log.Info("identity saved", zap.String("identity", id))
	return nil
}

// GetIdentity returns the record of id. ok is false when the record is absent
// or only partially stored; IdentityState tells the two apart.
func (s *Store) GetIdentity(ctx context.Context, id string) (models.Identity, bool, error) {
	values, state, err := s.loadIdentity(ctx, id)
	if err != nil {
		return models.Identity{}, false, err
	}

	switch state {
	case models.IdentityAbsent:
		return models.Identity{}, false, nil
	case models.IdentityPartial:
		s.log.Warn("identity record is incomplete", zap.String("identity", id))
		return models.Identity{}, false, nil
	}

	height, err := decodeHeight(values[0])
	if err != nil {
		return models.Identity{}, false, fmt.Errorf("identity %q: %w", id, err)
	}
	return models.Identity{
		Height:      height,
		Phrase:      string(values[1]),
		SpendingKey: string(values[2]),
	}, true, nil
}

// IdentityState reports whether the record of id is absent, partial or complete.
func (s *Store) IdentityState(ctx context.Context, id string) (models.IdentityState, error) {
	_, state, err := s.loadIdentity(ctx, id)
	return state, err
}

// DeleteIdentity removes all fields of id. It is idempotent and is the way to
// clear a partial record before saving the identity again.
func (s *Store) DeleteIdentity(ctx context.Context, id string) error {
	keys := keysForIdentity(id)

	s.locks.Lock(keys.namespace)
	defer s.locks.Unlock(keys.namespace)

	for _, k := range keys.all() {
		if err := s.backend.Delete(ctx, k); err != nil {
			return fmt.Errorf("delete identity: %w", err)
		}
	}
	s.log.Info("identity deleted", zap.String("identity", id))
	return nil
}

// loadIdentity reads the three fields in write order. Absent fields are nil.
func (s *Store) loadIdentity(ctx context.Context, id string) ([][]byte, models.IdentityState, error) {
	keys := keysForIdentity(id)

	values := make([][]byte, 0, 3)
	present := 0
	for _, k := range keys.all() {
		raw, err := s.backend.Get(ctx, k)
		switch {
		case err == nil:
			present++
		case errors.Is(err, keystore.ErrNotFound):
			raw = nil
		case errors.Is(err, keystore.ErrSealBroken):
			return nil, "", fmt.Errorf("identity %q: %w: %v", id, ErrCorrupt, err)
		default:
			return nil, "", fmt.Errorf("read identity: %w", err)
		}
		values = append(values, raw)
	}

	switch present {
	case 0:
		return values, models.IdentityAbsent, nil
	case len(values):
		return values, models.IdentityComplete, nil
	default:
		return values, models.IdentityPartial, nil
	}
}

func (s *Store) rollback(ctx context.Context, id string, written []string) {
	for _, k := range written {
		if err := s.backend.Delete(ctx, k); err != nil {
			s.log.Error("identity rollback failed, record left partial",
				zap.String("identity", id), zap.Error(err))
			return
		}
	}
}
