// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"context"
	"errors"

	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
	"github.com/matt-FFFFFF/ppool/internal/jobfile"
	"github.com/matt-FFFFFF/ppool/internal/pool"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag       = "file"
	maxWorkersFlag = "max-workers"
	newSessionFlag = "detach-session"
	redirectFlag   = "redirect"
	cliExitStr     = ""

	// maxWorkersUnset marks the override flag as not given; zero cannot be
	// the sentinel because zero means an unbounded pool.
	maxWorkersUnset = -1
)

// RunCmd is the command that runs a pool of workers over a jobfile.
var RunCmd = &cli.Command{
	Name: "run",
	Description: `Run a pool of worker processes over the jobs defined in a YAML jobfile.
Each job runs the jobfile's command line in its own OS process, with the job
identifier as $1. The number of simultaneous workers is capped by max_workers
(0 means unbounded). Exit statuses are collected and the command exits nonzero
when any job failed.

Jobfile URLs use Hashicorp's go-getter syntax, which allows for fetching files
from various sources. See https://github.com/hashicorp/go-getter.

Specify --file multiple times to run several jobfiles one after another.`,
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    fileFlag,
			Aliases: []string{"f"},
			Usage: "Specify the URL of the YAML jobfile to run. " +
				"Supports Hashicorp's go-getter syntax for fetching files from various sources. " +
				"Specify multiple times to run multiple files.",
			OnlyOnce: false,
		},
		&cli.IntFlag{
			Name:        maxWorkersFlag,
			Aliases:     []string{"p"},
			Usage:       "Override the jobfile's max_workers. Zero means unbounded.",
			Value:       maxWorkersUnset,
			DefaultText: "from the jobfile",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        newSessionFlag,
			Usage:       "Run every worker as the leader of its own session, regardless of the jobfile.",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.StringFlag{
			Name:        redirectFlag,
			Usage:       "Override the jobfile's redirect_path; worker output appends to <path>.<job>.",
			DefaultText: "from the jobfile",
			OnlyOnce:    true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("Running run command")

	urls := cmd.StringSlice(fileFlag)
	if len(urls) == 0 {
		logger.Error("Please specify at least one jobfile URL using the --file or -f flag.")

		return cli.Exit(cliExitStr, 1)
	}

	defs, err := loadDefinitions(ctx, urls)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	over := overrides{
		maxWorkers: cmd.Int(maxWorkersFlag),
		newSession: cmd.Bool(newSessionFlag),
		redirect:   cmd.String(redirectFlag),
	}

	failed := false

	for i, def := range defs {
		cfg, err := def.ToConfig()
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		over.apply(&cfg)

		p, err := pool.New(cfg)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		logger.Info("running jobfile",
			"name", def.Name,
			"url", urls[i],
			"jobs", len(cfg.Jobs),
			"maxWorkers", cfg.MaxWorkers)

		res, err := p.Run(ctx)

		switch {
		case errors.Is(err, pool.ErrTerminated):
			logger.Error("run terminated before completion", "name", def.Name, "error", err)

			return cli.Exit(cliExitStr, 1)
		case errors.Is(err, pool.ErrJobsFailed):
			failed = true
		case err != nil:
			return cli.Exit(err.Error(), 1)
		}

		if err := res.Write(cmd.Writer); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	if failed {
		logger.Error("Some jobs failed. See above for details.")

		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

// loadDefinitions fetches and validates every jobfile before anything
// runs: a broken second file must surface before the first pool has run,
// not after.
func loadDefinitions(ctx context.Context, urls []string) ([]*jobfile.Definition, error) {
	defs := make([]*jobfile.Definition, len(urls))

	for i, u := range urls {
		def, err := jobfile.Load(ctx, u)
		if err != nil {
			return nil, err
		}

		defs[i] = def
	}

	return defs, nil
}

// overrides are the command-line flags that layer over a jobfile's
// settings.
type overrides struct {
	maxWorkers int
	newSession bool
	redirect   string
}

func (o overrides) apply(cfg *pool.Config) {
	if o.maxWorkers != maxWorkersUnset {
		cfg.MaxWorkers = o.maxWorkers
	}

	if o.newSession {
		cfg.NewSession = true
	}

	if o.redirect != "" {
		cfg.RedirectPath = o.redirect
	}
}
