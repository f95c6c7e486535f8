package keystore

import (
	"context"
	"fmt"
	"os"

	"github.com/atinyakov/seedkeeper/internal/config"
	"github.com/atinyakov/seedkeeper/internal/db"
	"go.uber.org/zap"
)

// Open builds the backend selected by opts. The returned close function
// releases any connection the backend holds and is never nil.
func Open(ctx context.Context, opts *config.Options, log *zap.Logger) (Backend, func() error, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	var (
		backend Backend
		closer  = func() error { return nil }
	)
	switch opts.Backend {
	case config.BackendKeyring:
		backend = NewKeyringBackend(opts.Service)
	case config.BackendPostgres:
		conn, err := db.InitPostgres(ctx, opts.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		backend = NewPostgresBackend(conn)
		closer = conn.Close
	case config.BackendMemory:
		log.Warn("memory backend selected, secrets will not survive a restart")
		backend = NewMemoryBackend()
	}

	if opts.SealKeyFile != "" {
		material, err := os.ReadFile(opts.SealKeyFile)
		if err != nil {
			_ = closer()
			return nil, nil, fmt.Errorf("read seal key: %w", err)
		}
		aead, err := NewAEAD(material)
		if err != nil {
			_ = closer()
			return nil, nil, err
		}
		backend = NewSealedBackend(backend, aead)
	}

	log.Info("credential backend ready",
		zap.String("backend", opts.Backend),
		zap.Bool("sealed", opts.SealKeyFile != ""),
	)
	return backend, closer, nil
}
