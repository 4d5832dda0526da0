// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package worker implements the child side of the pool's re-exec protocol.
//
// Go cannot fork and keep running, so the pool starts a fresh copy of the
// current executable for every job and marks it with an environment
// variable. Any program embedding the pool must call [Init] first thing in
// main (and in TestMain for test binaries): in the parent Init is a no-op;
// in a worker it shields itself from terminal job-control signals, applies
// the umask, scrubs the protocol variables from the environment,
// reinitializes logging with a worker prefix, runs the registered callback,
// and exits the process. Init never returns control to the rest of main in
// a worker.
package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
	"golang.org/x/sys/unix"
)

// exit is swapped out in tests.
var exit = os.Exit

// Init bootstraps a worker process. When the marker environment variable is
// absent it returns immediately and the caller carries on as the parent.
// When present, the process is a worker: the job identifier is argv[1], the
// argument payload is argv[2:], and the process exits with the callback's
// status without returning.
func Init() {
	name, ok := os.LookupEnv(MarkerEnvVar)
	if !ok {
		return
	}

	exit(run(name))
}

func run(name string) int {
	// A worker without a new session still shares the controller's
	// terminal. Ignoring the job-control signals stops that terminal from
	// suspending it.
	signal.Ignore(syscall.SIGTTIN, syscall.SIGTTOU, syscall.SIGTSTP)

	applyUmask()

	// The protocol variables end here: anything the callback execs must
	// start clean, or a descendant that embeds the pool would boot into
	// worker mode instead of its own main.
	_ = os.Unsetenv(MarkerEnvVar)
	_ = os.Unsetenv(UmaskEnvVar)

	var (
		jobID string
		args  []string
	)

	if len(os.Args) > 1 {
		jobID = os.Args[1]
		args = os.Args[2:]
	}

	ctxlog.Reinit(fmt.Sprintf("[worker %s %d/%d]", jobID, os.Getpid(), os.Getppid()))
	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)

	fn, ok := DefaultRegistry[name]
	if !ok {
		ctxlog.Error(ctx, "worker", "detail", "callback not registered before Init", "callback", name)

		return 1
	}

	ctxlog.Debug(ctx, "worker", "detail", "starting callback", "callback", name, "args", args)

	start := time.Now()
	err := fn(ctx, jobID, args)
	elapsed := time.Since(start)

	if err != nil {
		ctxlog.Error(ctx, "worker",
			"detail", "callback failed",
			"callback", name,
			"duration", elapsed.String(),
			"err", err.Error())

		return 1
	}

	ctxlog.Info(ctx, "worker", "detail", "callback succeeded", "callback", name, "duration", elapsed.String())

	return 0
}

// applyUmask resets the worker's umask from the environment. The value is
// written by the spawner, so a parse failure means a protocol bug; the
// worker keeps its inherited umask and says so rather than dying.
func applyUmask() {
	v, ok := os.LookupEnv(UmaskEnvVar)
	if !ok {
		return
	}

	mask, err := strconv.ParseInt(v, 8, 32)
	if err != nil {
		ctxlog.Warn(context.Background(), "worker", "detail", "unparseable umask, keeping inherited", "value", v)

		return
	}

	unix.Umask(int(mask))
}
