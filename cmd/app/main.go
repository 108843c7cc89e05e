// Package main is the tokenacl CLI: the HTTP server plus operator commands
// that build, sign and submit engine instructions.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	root := &cli.Command{
		Name:                  "tokenacl",
		Usage:                 "Freeze authority custody and gated freeze/thaw for token mints",
		Version:               version,
		EnableShellCompletion: true,
		Commands:              getCommands(version),
	}

	err := root.Run(ctx, os.Args)
	stop()
	if err != nil {
		slog.Error("tokenacl failed", slog.Any("error", err))
		os.Exit(1)
	}
}
