// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pool

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
	"github.com/matt-FFFFFF/ppool/internal/signalbroker"
	"golang.org/x/sys/unix"
)

// signalExitBase is added to the signal number when a worker is killed by a
// signal, matching the shell convention for reporting signal deaths.
const signalExitBase = 128

// reaper turns SIGCHLD deliveries into wakeups for the dispatch loop and
// collects terminated children on demand. The delivery path owns nothing
// but the pending counter and the single-slot wake channel; the tracking
// tables are only ever touched by the pool's own goroutine calling drain.
type reaper struct {
	sigCh   chan os.Signal
	wake    chan struct{}
	pending atomic.Int64
	cancel  context.CancelFunc
	done    chan struct{}
}

// newReaper subscribes to SIGCHLD and starts the forwarder. Callers must
// release the subscription with close when the run is over.
func newReaper(ctx context.Context) *reaper {
	ctx, cancel := context.WithCancel(ctx)

	r := &reaper{
		sigCh:  signalbroker.New(ctx, unix.SIGCHLD),
		wake:   make(chan struct{}, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(r.done)

		signalbroker.Pump(ctx, r.sigCh, &r.pending, r.wake)
	}()

	return r
}

// close unsubscribes from SIGCHLD and stops the forwarder.
func (r *reaper) close() {
	signalbroker.Stop(r.sigCh)
	r.cancel()
	<-r.done
}

// drain collects every already-terminated child without blocking, calling
// record with each pid and exit status, and returns how many it collected
// plus whether the process has no remaining children at all. Calling drain
// when nothing has exited is a no-op that returns (0, false).
//
// SIGCHLD coalesces, so the pending counter is advisory: drain always asks
// the kernel and keeps collecting until nothing more is immediately ready.
func (r *reaper) drain(ctx context.Context, record func(pid, status int)) (int, bool) {
	notified := r.pending.Swap(0)
	collected := 0

	for {
		var ws unix.WaitStatus

		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG, nil)

		switch {
		case err == unix.EINTR:
			continue
		case err == unix.ECHILD:
			return collected, true
		case err != nil:
			ctxlog.Warn(ctx, "wait4 error while collecting children", "error", err)

			return collected, false
		case pid == 0:
			// Children exist but none has exited.
			if collected > 0 || notified > 0 {
				ctxlog.Debug(ctx, "drained terminated children",
					"collected", collected, "notified", notified)
			}

			return collected, false
		}

		record(pid, exitStatus(ws))

		collected++
	}
}

// exitStatus maps a wait status to the 0-255 value recorded in the status
// table. Without WUNTRACED the kernel only reports terminations, so the
// child either exited or died to a signal.
func exitStatus(ws unix.WaitStatus) int {
	if ws.Signaled() {
		return signalExitBase + int(ws.Signal())
	}

	return ws.ExitStatus()
}
