// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main demonstrates how the pool reacts to termination signals.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
	"github.com/matt-FFFFFF/ppool/internal/pool"
	"github.com/matt-FFFFFF/ppool/internal/signalbroker"
	"github.com/matt-FFFFFF/ppool/internal/worker"
)

func main() {
	// The cascade delivers SIGTERM to every worker; a callback that traps
	// it can say goodbye before exiting.
	worker.Register("snooze", func(ctx context.Context, jobID string, _ []string) error {
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
		defer stop()

		select {
		case <-time.After(20 * time.Second): //nolint:mnd
			fmt.Printf("job %s finished its nap\n", jobID)

			return nil
		case <-ctx.Done():
			fmt.Printf("job %s was woken up early\n", jobID)

			return ctx.Err()
		}
	})

	worker.Init()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second) //nolint:mnd
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	ctxlog.LevelVar.Set(slog.LevelDebug)

	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	fmt.Println("=== Signal Handling Demo ===")
	fmt.Println("1. Press Ctrl+C once: the pool sends SIGTERM to every worker and the run ends with ErrTerminated")
	fmt.Println("2. Press Ctrl+C twice: the watchdog stops listening and cancels the whole program")
	fmt.Println("3. Wait 30 seconds for the auto-timeout")
	fmt.Println("Running three snoozing workers...")

	p, err := pool.New(pool.Config{
		Callback:   "snooze",
		Jobs:       []string{"one", "two", "three"},
		MaxWorkers: 3, //nolint:mnd
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	res, err := p.Run(ctx)

	fmt.Println("\n=== Results ===")

	switch {
	case errors.Is(err, pool.ErrTerminated):
		fmt.Println("run terminated by signal; workers were told to stop and no result was collected")
	case errors.Is(err, pool.ErrJobsFailed):
		_ = res.Print()
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	default:
		_ = res.Print()
	}
}
