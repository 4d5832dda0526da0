// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pool runs a sequence of jobs, one operating-system process per
// job, with a configurable ceiling on how many run at once. Exit statuses
// are collected into a table keyed by pid and the run succeeds only when
// every worker exited zero.
//
// Workers are fresh copies of the current executable started through the
// protocol in the worker package: the spawner marks the child with an
// environment variable and the embedding program's call to worker.Init runs
// the registered callback and exits. Workers are detached on creation:
// stdin comes from the null device, output is optionally redirected to a
// per-job file, the working directory and umask are applied, and the worker
// can be made a session leader.
//
// The pool is single-owner: all tracking state is touched only by the
// goroutine inside [Pool.Run]. Child exits are observed via SIGCHLD, which
// does nothing in signal context beyond bumping a counter and posting a
// wakeup; collection happens with non-blocking wait4 on the pool's own
// control path. A termination signal (or context cancellation) aborts the
// run: the controller's process group and every tracked worker are sent
// SIGTERM and Run returns [ErrTerminated] without waiting for the workers.
//
// Two pools must not run concurrently in the same process, and the process
// must not wait on child processes of its own while a run is active: exit
// collection uses wait4(-1) and cannot tell whose child it has reaped.
//
// There is no per-job timeout. A worker that hangs occupies its concurrency
// slot until it exits or the run is terminated.
//
// Unix only: session leadership, umask and SIGCHLD semantics are POSIX.
package pool
