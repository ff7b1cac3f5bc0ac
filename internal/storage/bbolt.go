package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket = []byte("config") // store ID, cipher, timestamps - unencrypted
	ValuesBucket = []byte("values") // hex ciphertext per key
	IndexBucket  = []byte("index")  // Public key list for ls - unencrypted
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigStoreID  = []byte("store_id")
	ConfigCipher   = []byte("cipher")
)

var (
	ErrNotInitialized = errors.New("store not initialized")
	ErrCipherMismatch = errors.New("store was created with a different cipher suite")
)

// Storage provides BBolt-based storage for lockkv ciphertext
type Storage struct {
	db *bolt.DB
}

// Open opens or creates a lockkv database and ensures its buckets exist
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Storage{db: db}
	initialized, err := s.IsInitialized()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check database: %w", err)
	}
	if !initialized {
		if err := s.Initialize(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

// Initialize creates the bucket structure for a new store
func (s *Storage) Initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, ValuesBucket, IndexBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if err := config.Put(ConfigVersion, []byte("1")); err != nil {
			return err
		}

		now := time.Now()
		created, _ := now.MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// IsInitialized checks if the database has been initialized
func (s *Storage) IsInitialized() (bool, error) {
	var initialized bool
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config != nil && config.Get(ConfigVersion) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

// GetItem retrieves the ciphertext stored under key
func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		values := tx.Bucket(ValuesBucket)
		if values == nil {
			return ErrNotInitialized
		}
		data := values.Get([]byte(key))
		if data == nil {
			return nil
		}
		// string() copies, the slice is only valid during the transaction
		value, found = string(data), true
		return nil
	})
	return value, found, err
}

// SetItem stores ciphertext under key and records it in the index
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry, err := json.Marshal(newIndexEntry(key, value))
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		values := tx.Bucket(ValuesBucket)
		index := tx.Bucket(IndexBucket)
		if values == nil || index == nil {
			return ErrNotInitialized
		}
		if err := values.Put([]byte(key), []byte(value)); err != nil {
			return err
		}
		if err := index.Put([]byte(key), entry); err != nil {
			return err
		}
		return touchModified(tx)
	})
}

// RemoveItem removes the ciphertext and index entry for key.
// Removing a missing key succeeds.
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		values := tx.Bucket(ValuesBucket)
		index := tx.Bucket(IndexBucket)
		if values == nil || index == nil {
			return ErrNotInitialized
		}
		if values.Get([]byte(key)) == nil && index.Get([]byte(key)) == nil {
			return nil
		}
		if err := values.Delete([]byte(key)); err != nil {
			return err
		}
		if err := index.Delete([]byte(key)); err != nil {
			return err
		}
		return touchModified(tx)
	})
}

// Keys returns all stored keys in byte order
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		values := tx.Bucket(ValuesBucket)
		if values == nil {
			return ErrNotInitialized
		}
		return values.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// Index returns all entries of the public index
func (s *Storage) Index() ([]IndexEntry, error) {
	var entries []IndexEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		if index == nil {
			return ErrNotInitialized
		}
		return index.ForEach(func(k, v []byte) error {
			var entry IndexEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("corrupt index entry %q: %w", k, err)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	return entries, err
}

// GetModified retrieves the last modified timestamp
func (s *Storage) GetModified() (time.Time, error) {
	var modified time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

// GetOrCreateStoreID retrieves existing store ID or generates a new one
func (s *Storage) GetOrCreateStoreID() (string, error) {
	var storeID string
	err := s.db.Update(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		if data := config.Get(ConfigStoreID); data != nil {
			storeID = string(data)
			return nil
		}
		storeID = uuid.NewString()
		return config.Put(ConfigStoreID, []byte(storeID))
	})
	if err != nil {
		return "", fmt.Errorf("failed to get store ID: %w", err)
	}
	return storeID, nil
}

// EnsureCipher records the cipher suite name on first use and rejects a
// different name afterwards.
func (s *Storage) EnsureCipher(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		stored := config.Get(ConfigCipher)
		if stored == nil {
			return config.Put(ConfigCipher, []byte(name))
		}
		if string(stored) != name {
			return fmt.Errorf("%w: stored %s, configured %s", ErrCipherMismatch, stored, name)
		}
		return nil
	})
}

func touchModified(tx *bolt.Tx) error {
	config := tx.Bucket(ConfigBucket)
	if config == nil {
		return ErrNotInitialized
	}
	modified, _ := time.Now().MarshalBinary()
	return config.Put(ConfigModified, modified)
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after removing values to reclaim disk space.
func (s *Storage) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	// Create new database
	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets
	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		os.Remove(tmpPath)
		return errors.Join(fmt.Errorf("failed to backup original: %w", err), s.reopen(srcPath))
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return errors.Join(fmt.Errorf("failed to replace database: %w", err), s.reopen(srcPath))
	}
	os.Remove(backupPath)

	return s.reopen(srcPath)
}

// reopen opens path in place of the closed handle
func (s *Storage) reopen(path string) error {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}
	s.db = db
	return nil
}

// Ping checks that the database is open and initialized
func (s *Storage) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(ConfigBucket) == nil {
			return ErrNotInitialized
		}
		return nil
	})
}
