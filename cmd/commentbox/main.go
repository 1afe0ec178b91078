// Command commentbox serves a comment page whose comments are sanitized
// with allowhtml before they are stored.
//
// Usage:
//
//	commentbox [serve|migrate]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/njchilds90/allowhtml/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "commentbox: %v\n", err)
		os.Exit(1)
	}
}
