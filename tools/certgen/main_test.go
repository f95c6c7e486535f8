package main

import (
	"bytes"
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/atinyakov/seedkeeper/internal/certgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags_Defaults(t *testing.T) {
	o, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, options{dir: "certs", caName: "seedkeeper CA", server: "localhost", client: "wallet-ui"}, o)
}

func TestParseFlags_Overrides(t *testing.T) {
	o, err := parseFlags([]string{"-dir", "/tmp/x", "-client", "settings-ui"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", o.dir)
	assert.Equal(t, "settings-ui", o.client)

	_, err = parseFlags([]string{"-nope"})
	assert.Error(t, err)
}

func TestRun_WritesUsableKeyPairs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	var out bytes.Buffer

	require.NoError(t, run(options{dir: dir, caName: "Test CA", server: "localhost", client: "alice"}, &out))
	assert.Contains(t, out.String(), dir)

	_, err := tls.LoadX509KeyPair(filepath.Join(dir, certgen.ServerCertFile), filepath.Join(dir, certgen.ServerKeyFile))
	require.NoError(t, err)
	pair, err := tls.LoadX509KeyPair(filepath.Join(dir, certgen.ClientCertFile), filepath.Join(dir, certgen.ClientKeyFile))
	require.NoError(t, err)
	require.NotEmpty(t, pair.Certificate)

	_, err = os.Stat(filepath.Join(dir, certgen.CACertFile))
	require.NoError(t, err)
}
