package keystore

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSealed(t *testing.T) (*SealedBackend, *MemoryBackend) {
	t.Helper()
	aead, err := NewAEAD([]byte("test key material"))
	require.NoError(t, err)
	inner := NewMemoryBackend()
	return NewSealedBackend(inner, aead), inner
}

func TestSealedBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, inner := newSealed(t)

	require.NoError(t, s.Set(ctx, "seed", []byte("very secret")))

	raw, err := inner.Get(ctx, "seed")
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, []byte("very secret")), "value stored in the clear")

	got, err := s.Get(ctx, "seed")
	require.NoError(t, err)
	assert.Equal(t, []byte("very secret"), got)
}

func TestSealedBackend_EmptyValue(t *testing.T) {
	ctx := context.Background()
	s, _ := newSealed(t)

	require.NoError(t, s.Set(ctx, "seed", []byte{}))
	got, err := s.Get(ctx, "seed")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSealedBackend_Tampered(t *testing.T) {
	ctx := context.Background()
	s, inner := newSealed(t)

	require.NoError(t, s.Set(ctx, "seed", []byte("payload")))
	raw, err := inner.Get(ctx, "seed")
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	require.NoError(t, inner.Set(ctx, "seed", raw))

	_, err = s.Get(ctx, "seed")
	require.ErrorIs(t, err, ErrSealBroken)
}

func TestSealedBackend_ValueBoundToKey(t *testing.T) {
	ctx := context.Background()
	s, inner := newSealed(t)

	require.NoError(t, s.Set(ctx, "a", []byte("payload")))
	raw, err := inner.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, inner.Set(ctx, "b", raw))

	_, err = s.Get(ctx, "b")
	require.ErrorIs(t, err, ErrSealBroken)
}

func TestSealedBackend_TooShort(t *testing.T) {
	ctx := context.Background()
	s, inner := newSealed(t)
	require.NoError(t, inner.Set(ctx, "k", []byte{1, 2}))

	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrSealBroken)
}

func TestSealedBackend_SetIfAbsentAndWipe(t *testing.T) {
	ctx := context.Background()
	s, _ := newSealed(t)

	ok, err := s.SetIfAbsent(ctx, "k", []byte("v1"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.SetIfAbsent(ctx, "k", []byte("v2"))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	n, err := s.DeleteKeys(ctx, keys)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSealedBackend_WrongKey(t *testing.T) {
	ctx := context.Background()
	s, inner := newSealed(t)
	require.NoError(t, s.Set(ctx, "k", []byte("v")))

	other, err := NewAEAD([]byte("another key"))
	require.NoError(t, err)
	_, err = NewSealedBackend(inner, other).Get(ctx, "k")
	require.ErrorIs(t, err, ErrSealBroken)
}

func TestExists_UnreadableSealedValue(t *testing.T) {
	ctx := context.Background()
	s, inner := newSealed(t)
	require.NoError(t, inner.Set(ctx, "seed", []byte("stored before sealing was enabled")))

	ok, err := Exists(ctx, s, "seed")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Exists(ctx, s, "other")
	require.NoError(t, err)
	assert.False(t, ok)
}
