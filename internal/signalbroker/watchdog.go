// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
)

// Watch escalates repeated termination signals. The first delivery of a
// signal is left to the other subscribers (a running pool turns it into a
// termination cascade); a second delivery of the same signal unsubscribes
// and cancels the context, so a stuck run can still be torn down from the
// keyboard. Watch returns when it cancels or when sigCh is closed.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Logger(ctx).Info("watchdog",
				"detail", "received second signal of type, forcefully terminating",
				"signal", sig.String())
			Stop(sigCh)
			cancel()

			return
		}

		ctxlog.Logger(ctx).Info("watchdog",
			"detail", "received first signal of type, leaving it to the run",
			"signal", sig.String())

		seen[sig] = struct{}{}
	}
}
