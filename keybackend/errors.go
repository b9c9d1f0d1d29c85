package keybackend

import "errors"

var (
	// ErrKeyNotFound is returned when the access key does not exist in the store.
	ErrKeyNotFound = errors.New("access key not found")
	// ErrNoSigningKey is returned when no key pair can be chosen for presigning.
	ErrNoSigningKey = errors.New("no signing key")
)
