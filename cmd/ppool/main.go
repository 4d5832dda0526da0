// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the ppool command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/ppool"
	"github.com/matt-FFFFFF/ppool/cmd/ppool/detach"
	"github.com/matt-FFFFFF/ppool/cmd/ppool/run"
	"github.com/matt-FFFFFF/ppool/cmd/ppool/show"
	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
	"github.com/matt-FFFFFF/ppool/internal/shellfunc"
	"github.com/matt-FFFFFF/ppool/internal/signalbroker"
	"github.com/matt-FFFFFF/ppool/internal/worker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		show.ShowCmd,
		detach.DetachCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "ppool",
	Description: `ppool is a bounded-concurrency process pool. It runs a shell command
once per job identifier, each in its own detached OS process, capping how many
run simultaneously and collecting every exit status into an overall result.
Runs are described by YAML jobfiles, fetched with Hashicorp's go-getter URL
syntax.`,
	Usage:     "ppool run -f jobs.yaml",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func main() {
	// Callbacks must be registered before Init: when this process is a
	// worker, Init runs the callback and exits, never reaching the CLI.
	shellfunc.Register()
	worker.Init()

	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", ppool.Version, ppool.Commit)

	err := rootCmd.Run(ctx, os.Args) // Err is handled by cli framework

	// Check if the context was cancelled (e.g., due to signals)
	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Info("command completed successfully")
}
