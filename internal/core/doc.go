// Package core provides the lockkv secure value store.
//
// A Store splits every value across two injected backends:
//   - BoundedSecureStore: small, trusted storage (the OS keyring) holding
//     one hex-encoded encryption key per LogicalKey
//   - UnboundedStore: large, less trusted storage (bbolt, S3) holding the
//     hex-encoded ciphertext under the same LogicalKey
//
// Every Set generates a brand-new key, so overwriting a value invalidates
// the previous ciphertext. The two writes are not atomic; a concurrent Get
// may observe a new key with an old ciphertext and fail to decode. Enable
// WithKeyLocking to serialize operations on one key within a process.
//
// Presence states per LogicalKey:
//   - both present: Get returns the value
//   - ciphertext only: missing key material, Get reports absent
//   - key only: orphan key, Get reports absent
//   - neither: Get reports absent
package core
