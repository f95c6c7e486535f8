package main

import (
	"context"
	"crypto/tls"
	"path/filepath"
	"testing"

	"github.com/atinyakov/seedkeeper/internal/certgen"
	"github.com/atinyakov/seedkeeper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestServerTLSConfig(t *testing.T) {
	b, err := certgen.NewBundle("Test CA", "localhost", "wallet-ui")
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, b.WriteFiles(dir))

	opts := &config.Options{
		CertFile: filepath.Join(dir, certgen.ServerCertFile),
		KeyFile:  filepath.Join(dir, certgen.ServerKeyFile),
		CAFile:   filepath.Join(dir, certgen.CACertFile),
	}
	cfg, err := serverTLSConfig(opts)
	require.NoError(t, err)
	assert.Equal(t, tls.RequireAndVerifyClientCert, cfg.ClientAuth)
	assert.Len(t, cfg.Certificates, 1)
	assert.NotNil(t, cfg.ClientCAs)

	opts.CAFile = opts.CertFile + ".missing"
	_, err = serverTLSConfig(opts)
	assert.ErrorContains(t, err, "read CA cert")

	opts.CAFile = opts.KeyFile
	_, err = serverTLSConfig(opts)
	assert.ErrorContains(t, err, "append CA cert")

	opts.KeyFile = opts.CertFile
	_, err = serverTLSConfig(opts)
	assert.ErrorContains(t, err, "load server cert/key")
}

func testOptions(t *testing.T) *config.Options {
	t.Helper()
	b, err := certgen.NewBundle("Test CA", "localhost", "wallet-ui")
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, b.WriteFiles(dir))
	return &config.Options{
		Port:     "127.0.0.1:0",
		Backend:  config.BackendMemory,
		CertFile: filepath.Join(dir, certgen.ServerCertFile),
		KeyFile:  filepath.Join(dir, certgen.ServerKeyFile),
		CAFile:   filepath.Join(dir, certgen.CACertFile),
	}
}

func TestRun_TLSFailureReturnsBeforeBackend(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	opts := testOptions(t)
	opts.KeyFile = opts.CertFile

	err := run(context.Background(), opts, zap.New(core))
	require.ErrorContains(t, err, "load server cert/key")
	assert.Equal(t, 1, logs.FilterMessage("failed to configure TLS").Len())
	assert.Zero(t, logs.FilterMessage("credential backend ready").Len())
}

func TestRun_BackendFailureIsReturned(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	opts := testOptions(t)
	opts.SealKeyFile = filepath.Join(t.TempDir(), "missing.key")

	err := run(context.Background(), opts, zap.New(core))
	require.ErrorContains(t, err, "read seal key")
	assert.Equal(t, 1, logs.FilterMessage("cannot open credential backend").Len())
}

func TestRun_StopsOnCancel(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, run(ctx, testOptions(t), zap.New(core)))
	assert.Equal(t, 1, logs.FilterMessage("server stopped").Len())
}
