// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package detach

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
	"github.com/matt-FFFFFF/ppool/internal/jobfile"
	"github.com/matt-FFFFFF/ppool/internal/pool"
	"github.com/matt-FFFFFF/ppool/internal/shellfunc"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag       = "file"
	commandFlag    = "command"
	jobFlag        = "job"
	workDirFlag    = "workdir"
	newSessionFlag = "detach-session"
	redirectFlag   = "redirect"
	cliExitStr     = ""

	defaultJobID = "detached"
)

// DetachCmd is the command that launches a single fire-and-forget worker.
var DetachCmd = &cli.Command{
	Name: "detach",
	Description: `Launch a single detached worker process and return immediately.
The worker's outcome is not tracked: it communicates only through its exit
status and side effects, like the redirect file.

The command line comes either from a jobfile (--file; its jobs list is
ignored) or directly from --command.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     fileFlag,
			Aliases:  []string{"f"},
			Usage:    "Specify the URL of a YAML jobfile to take the command and settings from.",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     commandFlag,
			Aliases:  []string{"c"},
			Usage:    "The shell command line to run; the job identifier is $1.",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     jobFlag,
			Aliases:  []string{"j"},
			Usage:    "The job identifier for the worker.",
			Value:    defaultJobID,
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     workDirFlag,
			Usage:    "The working directory for the worker.",
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:        newSessionFlag,
			Usage:       "Run the worker as the leader of its own session.",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.StringFlag{
			Name:     redirectFlag,
			Usage:    "Worker output appends to <path>.<job>.",
			OnlyOnce: true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	var (
		cfg pool.Config
		err error
	)

	if url := cmd.String(fileFlag); url != "" {
		cfg, err = configFromJobfile(ctx, url)
	} else {
		cfg, err = configFromFlags(
			cmd.String(commandFlag),
			cmd.String(workDirFlag),
			cmd.Bool(newSessionFlag),
			cmd.String(redirectFlag),
		)
	}

	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	jobID := cmd.String(jobFlag)

	pid, err := pool.Dispatch(ctx, cfg, jobID)
	if err != nil {
		logger.Error("could not start detached worker", "job", jobID, "error", err)

		return cli.Exit(cliExitStr, 1)
	}

	_, err = fmt.Fprintf(cmd.Writer, "started detached worker %d for job %q\n", pid, jobID)

	return err
}

// configFromJobfile takes the command and detachment settings from a
// jobfile. Its jobs list is irrelevant here, so only the parts a single
// worker needs are checked.
func configFromJobfile(ctx context.Context, url string) (pool.Config, error) {
	data, err := jobfile.Fetch(ctx, url)
	if err != nil {
		return pool.Config{}, err
	}

	def, err := jobfile.Parse(data)
	if err != nil {
		return pool.Config{}, fmt.Errorf("jobfile %q: %w", url, err)
	}

	if def.CommandLine == "" {
		return pool.Config{}, fmt.Errorf("jobfile %q: %w", url, jobfile.ErrNoCommandLine)
	}

	return def.ToConfig()
}

func configFromFlags(command, workDir string, newSession bool, redirect string) (pool.Config, error) {
	if command == "" {
		return pool.Config{}, shellfunc.ErrEmptyCommand
	}

	return pool.Config{
		Callback:     shellfunc.Name,
		Args:         []string{command},
		WorkDir:      workDir,
		NewSession:   newSession,
		RedirectPath: redirect,
	}, nil
}
