// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shellfunc provides the built-in work callback that runs a shell
// command line. It is what the ppool CLI registers, so every job a jobfile
// describes is a shell invocation.
package shellfunc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"

	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
	"github.com/matt-FFFFFF/ppool/internal/worker"
)

const (
	// Name is the registry name of the shell callback.
	Name = "shell"

	binSh             = "/bin/sh" // fallback when SHELL is unset
	commandSwitchUnix = "-c"
	shellArgvZero     = "ppool" // $0 inside the command line
)

// ErrEmptyCommand is returned when the argument payload carries no command
// line to run.
var ErrEmptyCommand = errors.New("empty command line")

// Register adds the shell callback to the default worker registry. The CLI
// calls this before worker.Init so both controller and workers know it.
func Register() {
	worker.Register(Name, Run)
}

// Run executes a shell command line inside the worker. The first argument
// is the command line; any further arguments become the shell's positional
// parameters after the job identifier, so the command line can use the job
// identifier as $1 and the extras as $2 onward.
//
// The command inherits the worker's standard streams, which the spawner
// already pointed at the redirect file when one is configured. A nonzero
// exit from the shell is returned as an error, which the worker reports as
// exit status 1.
func Run(ctx context.Context, jobID string, args []string) error {
	if len(args) == 0 || args[0] == "" {
		return ErrEmptyCommand
	}

	argv := slices.Concat(
		[]string{commandSwitchUnix, args[0], shellArgvZero, jobID},
		args[1:],
	)

	cmd := exec.CommandContext(ctx, defaultShell(ctx), argv...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("shell command for job %q: %w", jobID, err)
	}

	return nil
}

func defaultShell(ctx context.Context) string {
	if shell := os.Getenv("SHELL"); shell != "" {
		ctxlog.Debug(ctx, "using SHELL environment variable", "shell", shell)

		return shell
	}

	return binSh
}
