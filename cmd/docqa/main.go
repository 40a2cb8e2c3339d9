// Command docqa answers questions over ingested documents.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
)

// version is set by the release build via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(&bootstrap{})

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
