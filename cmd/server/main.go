// Package main initializes and starts the seedkeeper HTTPS server,
// setting up configuration, logging, the credential backend, the store,
// handlers, and mutual TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/seedkeeper/internal/config"
	"github.com/atinyakov/seedkeeper/internal/keystore"
	"github.com/atinyakov/seedkeeper/internal/logger"
	"github.com/atinyakov/seedkeeper/internal/seedstore"
	"github.com/atinyakov/seedkeeper/internal/server/handler/http"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, options, log.Log)
	stop()
	_ = log.Log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run serves the API until ctx is cancelled. Every resource it opens is
// released before it returns.
func run(ctx context.Context, options *config.Options, zapLogger *zap.Logger) error {
	tlsConfig, err := serverTLSConfig(options)
	if err != nil {
		zapLogger.Error("failed to configure TLS", zap.Error(err))
		return err
	}

	// Open the credential backend selected by configuration.
	backend, closeBackend, err := keystore.Open(ctx, options, zapLogger)
	if err != nil {
		zapLogger.Error("cannot open credential backend", zap.Error(err))
		return err
	}
	defer func() {
		if err := closeBackend(); err != nil {
			zapLogger.Error("close credential backend", zap.Error(err))
		}
	}()

	store := seedstore.New(backend, zapLogger)
	zapLogger.Info("wallet state",
		zap.Bool("initialized", len(seedstore.NewSeedProvider(store).Seed()) > 0))

	// Build the router with middleware and routes.
	walletHandler := &http.WalletHandler{Store: store, Log: zapLogger}
	identityHandler := &http.IdentityHandler{Store: store, Log: zapLogger}
	router := http.NewRouter(walletHandler, identityHandler, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
	if err := server.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Error("HTTPS server stopped", zap.Error(err))
		return err
	}
	zapLogger.Info("server stopped")
	return nil
}

// serverTLSConfig loads the server key pair and requires every client to
// present a certificate issued by the configured CA.
func serverTLSConfig(options *config.Options) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(options.CertFile, options.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load server cert/key: %w", err)
	}
	caCert, err := os.ReadFile(options.CAFile)
	if err != nil {
		return nil, fmt.Errorf("read CA cert: %w", err)
	}
	caCertPool := x509.NewCertPool()
	if ok := caCertPool.AppendCertsFromPEM(caCert); !ok {
		return nil, errors.New("append CA cert to pool")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    caCertPool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}
