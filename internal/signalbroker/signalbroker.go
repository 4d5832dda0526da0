// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker provides subscription channels for OS signals.
// By default it listens for os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
// and syscall.SIGQUIT signals.
//
// It also contains a pump function that forwards deliveries from a signal
// channel into a pending counter and a single-slot wake channel, so that
// signal-time work stays minimal and all bookkeeping happens on the
// receiver's own goroutine.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New creates a new signal broker that listens for the given OS signals.
// With no signals it subscribes to the set that should terminate the process.
// Callers must release the subscription with [Stop] when done.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop unsubscribes the channel from signal delivery. Pending deliveries may
// still be buffered in the channel after Stop returns.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}
