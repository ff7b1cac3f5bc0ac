// Package security validates LogicalKeys received from users before they
// reach the keyring and the general store.
package security

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// MaxKeyLength is the longest key accepted, in bytes. Keyring backends
// reject long account names well before bbolt or S3 limits apply.
const MaxKeyLength = 256

var (
	ErrEmptyKey       = errors.New("empty key not allowed")
	ErrKeyTooLong     = errors.New("key too long")
	ErrInvalidKey     = errors.New("key is not valid UTF-8")
	ErrControlCharKey = errors.New("key contains control characters")
)

// ValidateKey rejects keys the backing stores cannot hold reliably:
// - Empty keys
// - Keys longer than MaxKeyLength bytes
// - Invalid UTF-8
// - Control characters (newlines, NUL, escapes)
//
// Valid keys are returned to callers unchanged; no normalization happens.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if len(key) > MaxKeyLength {
		return fmt.Errorf("%w: %d > %d bytes", ErrKeyTooLong, len(key), MaxKeyLength)
	}
	if !utf8.ValidString(key) {
		return ErrInvalidKey
	}
	for i, r := range key {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %U at byte %d", ErrControlCharKey, r, i)
		}
	}
	return nil
}

// ValidateKeys validates every key, stopping at the first failure
func ValidateKeys(keys []string) error {
	for _, k := range keys {
		if err := ValidateKey(k); err != nil {
			return fmt.Errorf("invalid key %q: %w", k, err)
		}
	}
	return nil
}
