// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pool

import (
	"context"

	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
	"golang.org/x/sys/unix"
)

// killFn is swapped out in tests.
var killFn = unix.Kill

// terminateAll tears down every in-flight worker after a termination
// trigger. It signals the controller's whole process group once, then
// every tracked pid individually. The per-pid pass is not redundant: a
// worker that became a session leader left the process group, and the
// group-wide signal cannot reach it. It does not wait for the workers and
// does not collect their statuses.
//
// The group signal also reaches the controller itself, which is harmless:
// the pool's own subscription swallows it.
func (p *Pool) terminateAll(ctx context.Context) {
	logger := ctxlog.Logger(ctx)
	logger.Error("termination requested, signalling all workers", "running", len(p.running))

	if err := killFn(0, unix.SIGTERM); err != nil {
		logger.Warn("could not signal process group", "error", err)
	}

	for pid, wp := range p.running {
		if err := killFn(pid, unix.SIGTERM); err != nil {
			logger.Debug("could not signal worker", "pid", pid, "job", wp.jobID, "error", err)
		}
	}
}
