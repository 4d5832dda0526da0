// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pool

import (
	"context"

	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
)

// Dispatch launches a single detached worker and forgets it: the worker is
// created with the same detachment steps as a pooled worker but its pid is
// not tracked, there is no concurrency ceiling, and its outcome is neither
// waited for nor reported. The pid is returned for logging only.
//
// The configuration's job sequence is ignored; jobID names this one worker
// for the redirect file and the callback. Dispatch may be called any
// number of times.
func Dispatch(ctx context.Context, cfg Config, jobID string) (int, error) {
	if cfg.Callback == "" {
		return 0, ErrNoCallback
	}

	cfg.withDefaults()

	ps, err := launch(ctx, &cfg, jobID)
	if err != nil {
		return 0, err
	}

	// Release the zombie when the worker exits. The outcome is dropped on
	// the floor on purpose; a pool running in this process may win the
	// race to collect it, which is equally fine.
	go func() {
		_, _ = ps.Wait()
	}()

	ctxlog.Logger(ctx).Info("detached worker started", "job", jobID, "pid", ps.Pid)

	return ps.Pid, nil
}
