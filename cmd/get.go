package cmd

import (
	"context"
	"fmt"
	"os"
)

// Get decrypts and prints the value stored under key
func Get(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Error: get requires exactly one key\n")
		fmt.Fprintf(os.Stderr, "Usage: lockkv get <key>\n")
		os.Exit(1)
	}
	key := args[0]
	ValidateKeysOrExit(args)

	sess := OpenOrExit(ctx)
	defer sess.Close()

	value, ok, err := sess.Store.Get(ctx, key)
	if err != nil {
		HandleError(err)
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no value for %s\n", key)
		sess.Close()
		os.Exit(1)
	}

	fmt.Println(value)
}
