package cmd

import (
	"context"
	"fmt"
	"os"
)

// Remove deletes values and their keys
func Remove(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		fmt.Fprintf(os.Stderr, "Error: rm requires at least one key argument\n")
		fmt.Fprintf(os.Stderr, "Usage: lockkv rm <key> [key...]\n")
		os.Exit(1)
	}
	ValidateKeysOrExit(keys)

	sess := OpenOrExit(ctx)
	defer sess.Close()

	for _, key := range keys {
		if err := sess.Store.Remove(ctx, key); err != nil {
			HandleError(err)
		}
		fmt.Printf("removed: %s\n", key)
	}

	// Compact database to reclaim space
	if sess.Bolt != nil {
		if err := sess.Bolt.Compact(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: compaction failed: %s\n", err)
		}
	}
}
