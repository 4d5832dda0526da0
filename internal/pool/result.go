// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pool

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrJobsFailed is returned by Run when at least one job failed or
	// could not be started. The detail is in the joined multierror and in
	// the Result itself.
	ErrJobsFailed = errors.New("one or more jobs failed")
	// ErrTerminated is returned by Run when a termination signal or a
	// context cancellation aborted the run before every job was collected.
	ErrTerminated = errors.New("run terminated")
)

// JobStatus is the per-job view of an outcome. It exists alongside the
// pid-keyed status table because a job whose process could never be created
// has no pid to key on.
type JobStatus struct {
	// PID of the worker, or zero when process creation failed.
	PID int
	// ExitStatus of the worker, 0-255. Valid only when Collected is true.
	// Workers killed by a signal record 128 plus the signal number.
	ExitStatus int
	// Collected reports whether the worker's exit status was reaped.
	Collected bool
	// SpawnErr is the process-creation failure, when there was one.
	SpawnErr error
}

// Failed reports whether the job counts against the run: either its worker
// exited nonzero or no worker could be created for it.
func (s JobStatus) Failed() bool {
	return s.SpawnErr != nil || (s.Collected && s.ExitStatus != 0)
}

// Result is the authoritative record of a finished, unterminated run.
type Result struct {
	// Statuses maps worker pid to exit status. It has exactly one entry
	// per job that produced a process.
	Statuses map[int]int
	// Jobs maps job id to its outcome. It has exactly one entry per
	// dispatched job, including jobs whose spawn failed.
	Jobs map[string]JobStatus

	order []string
}

// JobIDs returns the job identifiers in dispatch order.
func (r *Result) JobIDs() []string {
	return slices.Clone(r.order)
}

// Success reports whether every recorded exit status is zero and every job
// produced a worker.
func (r *Result) Success() bool {
	for _, js := range r.Jobs {
		if js.Failed() {
			return false
		}
	}

	return true
}

// Err returns one error per failed job, in dispatch order, or nil when the
// run succeeded.
func (r *Result) Err() error {
	var merr *multierror.Error

	for _, id := range r.order {
		js, ok := r.Jobs[id]
		if !ok {
			continue
		}

		switch {
		case js.SpawnErr != nil:
			merr = multierror.Append(merr, fmt.Errorf("job %q: %w", id, js.SpawnErr))
		case js.Collected && js.ExitStatus != 0:
			merr = multierror.Append(merr, fmt.Errorf("job %q: pid %d exited with status %d", id, js.PID, js.ExitStatus))
		}
	}

	return merr.ErrorOrNil()
}

// Print writes the per-job outcomes to stdout.
func (r *Result) Print() error {
	return r.WriteText(os.Stdout)
}

// Write outputs the per-job outcomes to the specified writer.
func (r *Result) Write(w io.Writer) error {
	return r.WriteText(w)
}
