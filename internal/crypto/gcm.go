package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

type gcmSuite struct{}

// GCM is AES-128-GCM with a random nonce prepended to the ciphertext.
var GCM Suite = gcmSuite{}

func (gcmSuite) Name() string { return "aes-128-gcm" }

func (gcmSuite) KeySize() int { return KeySize }

// Seal encrypts plaintext using AES-128-GCM
func (s gcmSuite) Seal(key, plaintext []byte) ([]byte, error) {
	gcm, err := s.aead(key)
	if err != nil {
		return nil, err
	}

	// Generate random nonce
	nonce, err := GenerateRandom(NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Encrypt and authenticate, nonce first
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts ciphertext using AES-128-GCM
func (s gcmSuite) Open(key, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < NonceSize+TagSize {
		return nil, ErrInvalidCiphertext
	}

	gcm, err := s.aead(key)
	if err != nil {
		return nil, err
	}

	// Extract nonce
	nonce := ciphertext[:NonceSize]
	ciphertext = ciphertext[NonceSize:]

	// Decrypt and verify
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

func (s gcmSuite) aead(key []byte) (cipher.AEAD, error) {
	if err := checkKey(s, key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
