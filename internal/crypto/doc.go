// Package crypto provides the cipher suites used to seal values for lockkv.
//
// The default suite is AES-128 in counter mode:
//   - 16-byte key generated fresh for every write
//   - initial counter block fixed at 1 (15 zero bytes followed by 0x01)
//   - no authentication tag, ciphertext length equals plaintext length
//
// Reusing the fixed counter is only sound because a key never seals more
// than one value. Callers must not reuse keys across writes.
//
// Two authenticated suites are available as a hardening option:
//   - AES-128-GCM with a random 12-byte nonce prepended
//   - XChaCha20-Poly1305 with a 32-byte key and a random 24-byte nonce
//
// Memory safety:
//   - Use ClearBytes() to zero key material after use
package crypto
