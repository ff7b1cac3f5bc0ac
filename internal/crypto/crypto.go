package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
)

const (
	KeySize   = 16 // AES-128 key size
	NonceSize = 12 // GCM nonce size
	TagSize   = 16 // GCM authentication tag size
)

var (
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrAuthFailed        = errors.New("authentication failed")
	ErrInvalidKeySize    = errors.New("invalid key size")
	ErrUnknownSuite      = errors.New("unknown cipher suite")
)

// Suite seals and opens a single value under a single key.
type Suite interface {
	// Name identifies the suite in configuration and on disk.
	Name() string
	// KeySize is the width of keys accepted by Seal and Open.
	KeySize() int
	Seal(key, plaintext []byte) ([]byte, error)
	Open(key, ciphertext []byte) ([]byte, error)
}

// Suites lists every supported suite, default first.
var Suites = []Suite{CTR, GCM, XChaCha}

// SuiteByName returns the suite registered under name.
// An empty name selects the default CTR suite.
func SuiteByName(name string) (Suite, error) {
	if name == "" {
		return CTR, nil
	}
	for _, s := range Suites {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSuite, name)
}

// GenerateKey generates a fresh key for the given suite
func GenerateKey(s Suite) ([]byte, error) {
	key, err := GenerateRandom(s.KeySize())
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	memguard.WipeBytes(b)
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

func checkKey(s Suite, key []byte) error {
	if len(key) != s.KeySize() {
		return fmt.Errorf("%w: %s wants %d bytes, got %d", ErrInvalidKeySize, s.Name(), s.KeySize(), len(key))
	}
	return nil
}
