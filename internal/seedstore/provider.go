package seedstore

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// SeedProvider hands out the wallet seed to collaborators that cannot handle errors.
type SeedProvider interface {
	Seed() []byte
}

// BestEffortSeed adapts Store.ExportSeed to SeedProvider.
type BestEffortSeed struct {
	store *Store
}

// NewSeedProvider returns a SeedProvider reading from store.
func NewSeedProvider(store *Store) *BestEffortSeed {
	return &BestEffortSeed{store: store}
}

// Seed returns the stored seed, or an empty slice when it cannot be read.
func (p *BestEffortSeed) Seed() []byte {
	seed, err := p.store.ExportSeed(context.Background())
	if err != nil {
		if !errors.Is(err, ErrUninitialized) {
			p.store.log.Warn("seed unavailable", zap.Error(err))
		}
		return []byte{}
	}
	return seed
}
