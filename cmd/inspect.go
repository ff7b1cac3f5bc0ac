package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/lockkv/internal/core"
)

// Inspect prints which backing stores hold an entry for each key
func Inspect(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		fmt.Fprintf(os.Stderr, "Error: inspect requires at least one key argument\n")
		fmt.Fprintf(os.Stderr, "Usage: lockkv inspect <key> [key...]\n")
		os.Exit(1)
	}
	ValidateKeysOrExit(keys)

	sess := OpenOrExit(ctx)
	defer sess.Close()

	for _, key := range keys {
		state, err := sess.Store.Inspect(ctx, key)
		if err != nil {
			HandleError(err)
		}
		fmt.Printf("%s: %s\n", key, state)
		switch state {
		case core.StateMissingKey:
			fmt.Println("  ciphertext is stored but its key is gone; the value cannot be recovered")
			fmt.Printf("  run 'lockkv rm %s' to clean up\n", key)
		case core.StateOrphanKey:
			fmt.Println("  key is stored without ciphertext")
			fmt.Printf("  run 'lockkv rm %s' to clean up\n", key)
		}
	}
}
