package keystore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

// NewAEAD derives an AES-256-GCM cipher from arbitrary key material.
func NewAEAD(material []byte) (cipher.AEAD, error) {
	key := sha256.Sum256(material)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create AEAD: %w", err)
	}
	return aead, nil
}

// SealedBackend encrypts every value before handing it to the wrapped
// backend. Stored values have the layout nonce || ciphertext, and the key
// name is bound as additional data so a value cannot be moved to another key.
// Key names are stored in the clear.
type SealedBackend struct {
	inner Backend
	aead  cipher.AEAD
}

// NewSealedBackend wraps inner with aead.
func NewSealedBackend(inner Backend, aead cipher.AEAD) *SealedBackend {
	return &SealedBackend{inner: inner, aead: aead}
}

func (s *SealedBackend) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.open(key, sealed)
}

func (s *SealedBackend) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := s.seal(key, value)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, sealed)
}

// SetIfAbsent implements Inserter. It is atomic only when the wrapped
// backend is.
func (s *SealedBackend) SetIfAbsent(ctx context.Context, key string, value []byte) (bool, error) {
	sealed, err := s.seal(key, value)
	if err != nil {
		return false, err
	}
	return SetIfAbsent(ctx, s.inner, key, sealed)
}

func (s *SealedBackend) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// DeleteKeys implements BulkDeleter.
func (s *SealedBackend) DeleteKeys(ctx context.Context, keys []string) (int, error) {
	return DeleteKeys(ctx, s.inner, keys)
}

func (s *SealedBackend) Keys(ctx context.Context) ([]string, error) {
	return s.inner.Keys(ctx)
}

func (s *SealedBackend) seal(key string, value []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, value, []byte(key)), nil
}

func (s *SealedBackend) open(key string, sealed []byte) ([]byte, error) {
	if len(sealed) < s.aead.NonceSize() {
		return nil, fmt.Errorf("%w: %s is too short", ErrSealBroken, key)
	}
	nonce := sealed[:s.aead.NonceSize()]
	plain, err := s.aead.Open(nil, nonce, sealed[s.aead.NonceSize():], []byte(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSealBroken, key, err)
	}
	if plain == nil {
		plain = []byte{}
	}
	return plain, nil
}
