package storage

import (
	"sort"
	"time"
)

// IndexEntry describes a stored value without revealing it
type IndexEntry struct {
	Key     string    `json:"key"`
	Size    int64     `json:"size"` // ciphertext length in hex characters
	Updated time.Time `json:"updated"`
}

// newIndexEntry creates an index entry for a freshly written value
func newIndexEntry(key string, ciphertext string) IndexEntry {
	return IndexEntry{
		Key:     key,
		Size:    int64(len(ciphertext)),
		Updated: time.Now().UTC(),
	}
}

// SortEntries orders entries by key
func SortEntries(entries []IndexEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
}

// TotalSize sums the ciphertext sizes of entries
func TotalSize(entries []IndexEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total
}
