package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("value not found")
	ErrMissingKeyMaterial = errors.New("encryption key missing for stored value")
	ErrDecode             = errors.New("failed to decode stored value")
	ErrInvalidUTF8        = errors.New("value is not valid UTF-8")
	ErrListUnsupported    = errors.New("backing store does not support listing")
	ErrNilStore           = errors.New("backing store is nil")
)

// Backing store names used in errors, logs and metrics
const (
	SecureStoreName  = "secure"
	GeneralStoreName = "general"
)

// BackingStoreError reports a failed call on one of the backing stores.
// The underlying error is returned unchanged by Unwrap.
type BackingStoreError struct {
	Store string
	Op    string
	Key   string
	Err   error
}

func (e *BackingStoreError) Error() string {
	return fmt.Sprintf("%s store %s %q: %v", e.Store, e.Op, e.Key, e.Err)
}

func (e *BackingStoreError) Unwrap() error {
	return e.Err
}

// DecodeError reports stored data that could not be turned back into a value:
// malformed hex, a key of the wrong width, failed authentication or
// invalid UTF-8 after decryption.
type DecodeError struct {
	Key   string
	Field string // "key", "ciphertext" or "plaintext"
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s for %q: %v", e.Field, e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrDecode) hold for every DecodeError
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
