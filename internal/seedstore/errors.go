package seedstore

import "errors"

var (
	// ErrAlreadyImported is returned when a write-once secret already holds a value.
	ErrAlreadyImported = errors.New("secret already imported")
	// ErrUninitialized is returned when a required secret has never been stored.
	ErrUninitialized = errors.New("wallet not initialized")
	// ErrCorrupt is returned when a stored value exists but cannot be decoded.
	// Recovery means repairing or deleting the value, not importing it again.
	ErrCorrupt = errors.New("stored secret is corrupt")
)
