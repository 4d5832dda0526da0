// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
)

// Pump forwards deliveries from sigCh into a pending counter and a
// single-slot wake channel. The delivery path does the minimum: one counter
// increment and one non-blocking send; consecutive deliveries coalesce into
// a single wakeup and the counter carries the true total. All other
// bookkeeping belongs to whoever receives the wake.
//
// Pump returns when ctx is done or sigCh is closed.
func Pump(ctx context.Context, sigCh <-chan os.Signal, pending *atomic.Int64, wake chan<- struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			pending.Add(1)

			select {
			case wake <- struct{}{}:
			default: // a wakeup is already pending
			}

			ctxlog.Debug(ctx, "signalbroker", "detail", "pumped signal", "signal", sig.String())
		}
	}
}
