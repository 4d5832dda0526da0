// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main demonstrates embedding the worker pool in your own binary.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matt-FFFFFF/ppool/internal/pool"
	"github.com/matt-FFFFFF/ppool/internal/worker"
)

func main() {
	// Register every work callback before worker.Init. Workers are fresh
	// copies of this binary and find their callback by name.
	worker.Register("greet", func(_ context.Context, jobID string, _ []string) error {
		fmt.Printf("hello from job %s\n", jobID)
		time.Sleep(500 * time.Millisecond) //nolint:mnd

		return nil
	})

	worker.Register("flaky", func(_ context.Context, jobID string, _ []string) error {
		return fmt.Errorf("job %s is having a bad day", jobID) //nolint:err113
	})

	// In a worker process Init runs the callback and exits; in the
	// controller it returns immediately and main carries on.
	worker.Init()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second) //nolint:mnd
	defer cancel()

	fmt.Println("=== Pool run: two workers over five jobs ===")

	p, err := pool.New(pool.Config{
		Callback:   "greet",
		Jobs:       []string{"alpha", "bravo", "charlie", "delta", "echo"},
		MaxWorkers: 2, //nolint:mnd
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	res, err := p.Run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	_ = res.Print()

	// A failing job does not stop its siblings; the pool runs every job and
	// reports the failures at the end.
	fmt.Println("\n=== Pool run: one job always fails ===")

	p, err = pool.New(pool.Config{
		Callback: "flaky",
		Jobs:     []string{"doomed"},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	res, err = p.Run(ctx)
	if err != nil && !errors.Is(err, pool.ErrJobsFailed) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	_ = res.Print()

	// Fire-and-forget: the worker is started with the usual detachment
	// steps but nobody waits for its outcome.
	fmt.Println("\n=== Detached worker ===")

	redirect := filepath.Join(os.TempDir(), "ppool-example")

	pid, err := pool.Dispatch(ctx, pool.Config{
		Callback:     "greet",
		NewSession:   true,
		RedirectPath: redirect,
	}, "fire-and-forget")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("detached worker %d is writing to %s.fire-and-forget\n", pid, redirect)

	// Give the detached worker a moment to finish before the demo exits.
	time.Sleep(time.Second)
}
