package cmd

import (
	"context"
	"fmt"
	"os"
)

// Set encrypts and stores a value under key
func Set(ctx context.Context, args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintf(os.Stderr, "Error: set requires a key and an optional value\n")
		fmt.Fprintf(os.Stderr, "Usage: lockkv set <key> [value]\n")
		os.Exit(1)
	}
	key := args[0]
	ValidateKeysOrExit([]string{key})

	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		v, err := ReadValue("Enter value: ")
		if err != nil {
			HandleError(err)
		}
		value = v
	}

	sess := OpenOrExit(ctx)
	defer sess.Close()

	if err := sess.Store.Set(ctx, key, value); err != nil {
		HandleError(err)
	}

	fmt.Printf("stored: %s\n", key)
}
