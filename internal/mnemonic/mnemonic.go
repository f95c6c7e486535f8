// Package mnemonic validates and generates BIP-39 recovery phrases. The
// credential store never checks phrases itself; callers consult IsValid
// before importing one.
package mnemonic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// DefaultEntropyBits gives a 24-word phrase.
const DefaultEntropyBits = 256

// ErrInvalid is returned when a phrase fails the word-list or checksum check.
var ErrInvalid = errors.New("invalid mnemonic phrase")

// Normalize lowercases the phrase and collapses runs of whitespace into single spaces.
func Normalize(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}

// IsValid reports whether phrase uses the English word list with a correct checksum.
func IsValid(phrase string) bool {
	phrase = Normalize(phrase)
	if phrase == "" {
		return false
	}
	return bip39.IsMnemonicValid(phrase)
}

// Generate creates a new phrase from bits of entropy. bits must be a multiple
// of 32 between 128 and 256.
func Generate(bits int) (string, error) {
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return phrase, nil
}

// SeedFromPhrase stretches a valid phrase into the 64-byte BIP-39 seed.
func SeedFromPhrase(phrase, passphrase string) ([]byte, error) {
	phrase = Normalize(phrase)
	if !IsValid(phrase) {
		return nil, ErrInvalid
	}
	seed, err := bip39.NewSeedWithErrorChecking(phrase, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return seed, nil
}
