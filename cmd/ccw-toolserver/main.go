// ccw-toolserver is a standalone binary exposing ccw's tool catalog over
// stdio only, for deployments that pin the project via CCW_PROJECT_ROOT
// rather than a --path flag and have no need for the dashboard bridge.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ccwio/ccw/internal/config"
	"github.com/ccwio/ccw/internal/eventbus"
	"github.com/ccwio/ccw/internal/mcpbridge"
	"github.com/ccwio/ccw/internal/rpcserver"
	"github.com/ccwio/ccw/internal/store"
	"github.com/ccwio/ccw/internal/tools"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	projectRoot := os.Getenv(config.EnvProjectRoot)
	if projectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		projectRoot = wd
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sessionStore, err := store.New(projectRoot, eventbus.New(0))
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	allowlist := config.ResolveEnabledTools(cfg)
	var catalog []tools.Tool
	for _, t := range tools.NewRegistry(sessionStore, projectRoot, nil) {
		if config.ToolEnabled(allowlist, t.Name) {
			catalog = append(catalog, t)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if os.Getenv("CCW_MCP") != "" {
		return mcpbridge.RunStdio(ctx, mcpbridge.New(catalog))
	}
	return rpcserver.New(catalog, rpcserver.DefaultCallTimeout).Run(ctx, os.Stdin, os.Stdout)
}
