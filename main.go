// ./main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/layerlift/cmd"
)

// main is the entry point for the layerlift CLI application.
func main() {
	// Listen for interrupt signals so in-flight captures shut down cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			// Graceful shutdown initiated by the user.
			os.Exit(0)
		}
		os.Exit(1)
	}
}
