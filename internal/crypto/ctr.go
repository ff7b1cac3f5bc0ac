package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// InitialCounter is the counter block every CTR operation starts from.
var InitialCounter = [aes.BlockSize]byte{aes.BlockSize - 1: 1}

type ctrSuite struct{}

// CTR is AES-128 in counter mode with a fixed initial counter of 1.
var CTR Suite = ctrSuite{}

func (ctrSuite) Name() string { return "aes-128-ctr" }

func (ctrSuite) KeySize() int { return KeySize }

// Seal encrypts plaintext using AES-128-CTR
func (s ctrSuite) Seal(key, plaintext []byte) ([]byte, error) {
	return s.xor(key, plaintext)
}

// Open decrypts ciphertext using AES-128-CTR. Counter mode has no
// integrity check: a wrong key yields garbage, not an error.
func (s ctrSuite) Open(key, ciphertext []byte) ([]byte, error) {
	return s.xor(key, ciphertext)
}

func (s ctrSuite) xor(key, in []byte) ([]byte, error) {
	if err := checkKey(s, key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	iv := InitialCounter
	stream := cipher.NewCTR(block, iv[:])

	out := make([]byte, len(in))
	stream.XORKeyStream(out, in)
	return out, nil
}
