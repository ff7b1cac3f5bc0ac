package cmd

import (
	"context"
	"fmt"
	"os"
)

// Compact compacts the bbolt store to reclaim unused space
func Compact(ctx context.Context) {
	sess := OpenOrExit(ctx)
	defer sess.Close()

	if sess.Bolt == nil {
		fmt.Println("Nothing to compact: backend is", sess.Config.Store.Backend)
		return
	}

	// Get file size before
	info, err := os.Stat(sess.Bolt.Path())
	if err != nil {
		HandleError(err)
	}
	sizeBefore := info.Size()

	if err := sess.Bolt.Compact(); err != nil {
		HandleError(err)
	}

	// Get file size after
	info, err = os.Stat(sess.Bolt.Path())
	if err != nil {
		HandleError(err)
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}
