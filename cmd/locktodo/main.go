// Package main is the entry point for the locktodo CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"locktodo/internal/cli"
	"locktodo/internal/commands"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Nil opener and auth select the backend and gate named in config.toml.
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil, nil)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
