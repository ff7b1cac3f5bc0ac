package crypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

type xchachaSuite struct{}

// XChaCha is XChaCha20-Poly1305 with a random 24-byte nonce prepended.
var XChaCha Suite = xchachaSuite{}

func (xchachaSuite) Name() string { return "xchacha20-poly1305" }

func (xchachaSuite) KeySize() int { return chacha20poly1305.KeySize }

func (s xchachaSuite) Seal(key, plaintext []byte) ([]byte, error) {
	if err := checkKey(s, key); err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce, err := GenerateRandom(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (s xchachaSuite) Open(key, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return nil, ErrInvalidCiphertext
	}
	if err := checkKey(s, key); err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := ciphertext[:chacha20poly1305.NonceSizeX]
	plaintext, err := aead.Open(nil, nonce, ciphertext[chacha20poly1305.NonceSizeX:], nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}
