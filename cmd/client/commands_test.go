package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/atinyakov/seedkeeper/internal/client"
	"github.com/atinyakov/seedkeeper/internal/keystore"
	"github.com/atinyakov/seedkeeper/internal/mnemonic"
	"github.com/atinyakov/seedkeeper/internal/models"
	"github.com/atinyakov/seedkeeper/internal/seedstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPhrase = "letter advice cage absurd amount doctor acoustic avoid letter advice cage above"

func newCLI(input string) (*cli, *seedstore.Store, *bytes.Buffer) {
	store := seedstore.New(keystore.NewMemoryBackend(), zap.NewNop())
	out := &bytes.Buffer{}
	return &cli{
		api:    store,
		prompt: client.NewPrompter(strings.NewReader(input), out),
		out:    out,
	}, store, out
}

func TestCLI_InitStoresPhraseSeedAndBirthday(t *testing.T) {
	ctx := context.Background()
	c, store, out := newCLI("")

	require.NoError(t, c.exec(ctx, []string{"init", "2000000"}))

	phrase, err := store.ExportPhrase(ctx)
	require.NoError(t, err)
	assert.True(t, mnemonic.IsValid(phrase))
	assert.Len(t, strings.Fields(phrase), 24)
	assert.Contains(t, out.String(), phrase)

	seed, err := store.ExportSeed(ctx)
	require.NoError(t, err)
	want, err := mnemonic.SeedFromPhrase(phrase, "")
	require.NoError(t, err)
	assert.Equal(t, want, seed)

	h, err := store.ExportBirthday(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.BlockHeight(2000000), h)

	err = c.exec(ctx, []string{"init", "1"})
	require.ErrorIs(t, err, seedstore.ErrAlreadyImported)
	assert.Equal(t, "already imported; delete it first to replace it", describe(err))
}

func TestCLI_Restore(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newCLI("  LETTER advice cage absurd amount doctor acoustic avoid letter advice cage above \n")

	require.NoError(t, c.exec(ctx, []string{"restore", "10"}))
	phrase, err := store.ExportPhrase(ctx)
	require.NoError(t, err)
	assert.Equal(t, testPhrase, phrase)

	c, _, _ = newCLI("not a phrase\n")
	require.ErrorIs(t, c.exec(ctx, []string{"restore", "10"}), mnemonic.ErrInvalid)
}

func TestCLI_ImportPhrase(t *testing.T) {
	ctx := context.Background()
	c, store, out := newCLI(testPhrase + "\n" + "abandon abandon\n")

	require.NoError(t, c.exec(ctx, []string{"import-phrase"}))
	out.Reset()
	require.NoError(t, c.exec(ctx, []string{"export-phrase"}))
	assert.Equal(t, testPhrase+"\n", out.String())

	require.NoError(t, store.DeletePhrase(ctx))
	require.ErrorIs(t, c.exec(ctx, []string{"import-phrase"}), mnemonic.ErrInvalid)
	_, err := store.ExportPhrase(ctx)
	require.ErrorIs(t, err, seedstore.ErrUninitialized)
}

func TestCLI_SeedCommands(t *testing.T) {
	ctx := context.Background()
	c, _, out := newCLI("00ff10\nzz\n")

	require.NoError(t, c.exec(ctx, []string{"import-seed"}))
	out.Reset()
	require.NoError(t, c.exec(ctx, []string{"export-seed"}))
	assert.Equal(t, "00ff10\n", out.String())

	require.NoError(t, c.exec(ctx, []string{"delete-seed"}))
	assert.Error(t, c.exec(ctx, []string{"import-seed"}))

	err := c.exec(ctx, []string{"export-seed"})
	require.ErrorIs(t, err, seedstore.ErrUninitialized)
	assert.Equal(t, "not initialized", describe(err))
}

func TestCLI_KeysAndBirthday(t *testing.T) {
	ctx := context.Background()
	c, _, out := newCLI("")

	require.NoError(t, c.exec(ctx, []string{"save-keys", "k1", "k2"}))
	out.Reset()
	require.NoError(t, c.exec(ctx, []string{"get-keys"}))
	assert.Equal(t, "k1\nk2\n", out.String())

	assert.ErrorIs(t, c.exec(ctx, []string{"import-birthday"}), errUsage)
	assert.Error(t, c.exec(ctx, []string{"import-birthday", "-5"}))
	require.NoError(t, c.exec(ctx, []string{"import-birthday", "419200"}))
	out.Reset()
	require.NoError(t, c.exec(ctx, []string{"export-birthday"}))
	assert.Equal(t, "419200\n", out.String())
}

func TestCLI_Identity(t *testing.T) {
	ctx := context.Background()
	c, store, out := newCLI("word1  word2\nsk-1\n")

	require.NoError(t, c.exec(ctx, []string{"save-identity", "alice", "77"}))
	rec, ok, err := store.GetIdentity(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.Identity{Height: 77, Phrase: "word1 word2", SpendingKey: "sk-1"}, rec)

	out.Reset()
	require.NoError(t, c.exec(ctx, []string{"identity-state", "alice"}))
	assert.Equal(t, "complete\n", out.String())

	out.Reset()
	require.NoError(t, c.exec(ctx, []string{"get-identity", "alice"}))
	assert.Contains(t, out.String(), `"spending_key": "sk-1"`)

	require.NoError(t, c.exec(ctx, []string{"delete-identity", "alice"}))
	out.Reset()
	require.NoError(t, c.exec(ctx, []string{"get-identity", "alice"}))
	assert.Equal(t, "Identity not found\n", out.String())

	assert.ErrorIs(t, c.exec(ctx, []string{"save-identity", "alice"}), errUsage)
}

func TestCLI_WipeAsksFirst(t *testing.T) {
	ctx := context.Background()
	c, store, out := newCLI("n\nyes\n")
	require.NoError(t, store.ImportSeed(ctx, []byte{1}))

	require.NoError(t, c.exec(ctx, []string{"wipe"}))
	assert.Contains(t, out.String(), "Aborted")
	_, err := store.ExportSeed(ctx)
	require.NoError(t, err)

	require.NoError(t, c.exec(ctx, []string{"wipe"}))
	assert.Contains(t, out.String(), "Removed 1 entries")
	_, err = store.ExportSeed(ctx)
	require.ErrorIs(t, err, seedstore.ErrUninitialized)
}

func TestCLI_UnknownCommand(t *testing.T) {
	c, _, _ := newCLI("")
	assert.ErrorContains(t, c.exec(context.Background(), []string{"frobnicate"}), "unknown command")
}

func TestRepl(t *testing.T) {
	c, store, out := newCLI("help\n\nsave-keys a\nexport-phrase\nexit\nsave-keys b\n")
	repl(context.Background(), c)

	assert.Contains(t, out.String(), "Available commands")
	assert.Contains(t, out.String(), "Error: not initialized")
	assert.Contains(t, out.String(), "Bye")

	keys, err := store.GetKeys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys)
}
