package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/illarion/lockkv/internal/core"
	"github.com/illarion/lockkv/internal/storage"
)

// Status lists stored keys. Does not read the keyring.
// With quiet set, only the keys are printed, one per line.
func Status(ctx context.Context, quiet bool) {
	sess := OpenOrExit(ctx)
	defer sess.Close()

	if quiet {
		keys, err := sess.Store.Keys(ctx)
		if err != nil {
			HandleError(err)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Println(k)
		}
		return
	}

	fmt.Printf("Backend: %s\n", sess.Config.Store.Backend)
	fmt.Printf("Cipher:  %s\n", sess.Store.Suite().Name())

	if sess.Bolt != nil {
		printIndex(sess.Bolt)
		return
	}

	keys, err := sess.Store.Keys(ctx)
	if err != nil && !errors.Is(err, core.ErrListUnsupported) {
		HandleError(err)
	}
	sort.Strings(keys)
	fmt.Printf("\nKeys (%d):\n", len(keys))
	if len(keys) == 0 {
		fmt.Println("  (none)")
	}
	for _, k := range keys {
		fmt.Printf("  %s\n", k)
	}
}

func printIndex(db *storage.Storage) {
	entries, err := db.Index()
	if err != nil {
		HandleError(err)
	}
	storage.SortEntries(entries)

	if modified, err := db.GetModified(); err == nil {
		fmt.Printf("Store:   %s (modified %s)\n", db.Path(), modified.Format(time.RFC3339))
	}

	fmt.Printf("\nKeys (%d, %s ciphertext):\n", len(entries), formatSize(storage.TotalSize(entries)/2))
	if len(entries) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, e := range entries {
		fmt.Printf("  %-40s %10s  %s\n", e.Key, formatSize(e.Size/2), e.Updated.Local().Format(time.RFC3339))
	}
}

// formatSize formats bytes for display
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
