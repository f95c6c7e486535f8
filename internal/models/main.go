// Package models defines the core data structures stored by the credential store.
package models

// BlockHeight is a chain height. A wallet birthday is the height at which the
// wallet was created and bounds how far back sync has to scan.
type BlockHeight uint64

// Identity is the key bundle of one sub-wallet or account.
type Identity struct {
	// Height is the birth height of the identity.
	Height BlockHeight `json:"height"`
	// Phrase is the mnemonic recovery phrase.
	Phrase string `json:"phrase"`
	// SpendingKey is the encoded spending key.
	SpendingKey string `json:"spending_key"`
}

// IdentityState reports how much of an identity record is present in the backend.
type IdentityState string

const (
	// IdentityAbsent means none of the identity fields are stored.
	IdentityAbsent IdentityState = "absent"
	// IdentityPartial means some but not all fields are stored, usually the
	// leftover of an interrupted write.
	IdentityPartial IdentityState = "partial"
	// IdentityComplete means all three fields are stored.
	IdentityComplete IdentityState = "complete"
)
