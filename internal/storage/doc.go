// Package storage provides the unbounded backing stores for lockkv.
//
// The BBolt store uses three buckets:
//   - config: store ID, cipher suite name, timestamps (unencrypted)
//   - values: hex-encoded ciphertext per LogicalKey
//   - index: key, ciphertext size and update time (unencrypted, for ls)
//
// The index bucket enables lockkv ls to work without reading the
// keyring. Values and index entries are written in one transaction.
//
// S3Store keeps one object per LogicalKey in a bucket, under an
// optional key prefix.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
