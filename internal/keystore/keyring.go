package keystore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/zalando/go-keyring"
)

// indexKey names the keyring entry that lists every other entry of the
// service. OS keyrings have no portable way to enumerate a service.
const indexKey = "__index__"

// KeyringBackend stores values in the OS credential store (macOS Keychain,
// Secret Service on Linux, Windows Credential Manager) under one service name.
type KeyringBackend struct {
	service string

	// mu serialises writes so that an entry and the index never disagree
	// within this process.
	mu sync.Mutex
}

// NewKeyringBackend returns a backend scoped to service.
func NewKeyringBackend(service string) *KeyringBackend {
	return &KeyringBackend{service: service}
}

func (k *KeyringBackend) Get(_ context.Context, key string) ([]byte, error) {
	if key == indexKey {
		return nil, ErrReservedKey
	}
	return k.get(key)
}

func (k *KeyringBackend) get(key string) ([]byte, error) {
	encoded, err := keyring.Get(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("keyring get %s: %w", key, err)
	}
	value, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("keyring decode %s: %w", key, err)
	}
	return value, nil
}

func (k *KeyringBackend) Set(_ context.Context, key string, value []byte) error {
	if key == indexKey {
		return ErrReservedKey
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	prev, prevErr := keyring.Get(k.service, key)
	if err := keyring.Set(k.service, key, base64.StdEncoding.EncodeToString(value)); err != nil {
		return fmt.Errorf("keyring set %s: %w", key, err)
	}
	if err := k.updateIndex(func(idx map[string]struct{}) { idx[key] = struct{}{} }); err != nil {
		// An entry missing from the index is invisible to Keys, so undo the write.
		if prevErr == nil {
			_ = keyring.Set(k.service, key, prev)
		} else {
			_ = keyring.Delete(k.service, key)
		}
		return err
	}
	return nil
}

func (k *KeyringBackend) Delete(_ context.Context, key string) error {
	if key == indexKey {
		return ErrReservedKey
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	err := keyring.Delete(k.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %s: %w", key, err)
	}
	return k.updateIndex(func(idx map[string]struct{}) { delete(idx, key) })
}

func (k *KeyringBackend) Keys(_ context.Context) ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	idx, err := k.readIndex()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(idx))
	for key := range idx {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// readIndex must be called with mu held.
func (k *KeyringBackend) readIndex() (map[string]struct{}, error) {
	idx := make(map[string]struct{})

	raw, err := k.get(indexKey)
	if errors.Is(err, ErrNotFound) {
		return idx, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("keyring index: %w", err)
	}
	for _, n := range names {
		idx[n] = struct{}{}
	}
	return idx, nil
}

// updateIndex must be called with mu held.
func (k *KeyringBackend) updateIndex(mutate func(map[string]struct{})) error {
	idx, err := k.readIndex()
	if err != nil {
		return err
	}
	mutate(idx)

	if len(idx) == 0 {
		err := keyring.Delete(k.service, indexKey)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("keyring index delete: %w", err)
		}
		return nil
	}

	names := make([]string, 0, len(idx))
	for n := range idx {
		names = append(names, n)
	}
	sort.Strings(names)
	raw, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("keyring index: %w", err)
	}
	if err := keyring.Set(k.service, indexKey, base64.StdEncoding.EncodeToString(raw)); err != nil {
		return fmt.Errorf("keyring index set: %w", err)
	}
	return nil
}
