// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
	"go.uber.org/goleak"
)

// verifyNoLeaks ignores the runtime's signal-delivery goroutine, which
// outlives any test that ever subscribed with signal.Notify.
func verifyNoLeaks(t *testing.T) {
	t.Helper()
	goleak.VerifyNone(t, goleak.IgnoreTopFunction("os/signal.signal_recv"))
}

func TestPump_CountsAndCoalesces(t *testing.T) {
	defer verifyNoLeaks(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	sigCh := make(chan os.Signal, 4)
	wake := make(chan struct{}, 1)

	var pending atomic.Int64

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Pump(ctx, sigCh, &pending, wake)
	}()

	sigCh <- syscall.SIGCHLD
	sigCh <- syscall.SIGCHLD
	sigCh <- syscall.SIGCHLD

	deadline := time.After(time.Second)
	for pending.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("pending = %d, want 3", pending.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	// All three deliveries coalesce into a single buffered wakeup.
	select {
	case <-wake:
		// ok
	default:
		t.Fatal("expected a pending wakeup")
	}

	select {
	case <-wake:
		t.Fatal("wakeups should coalesce into the single slot")
	default:
		// ok
	}

	close(sigCh)
	wg.Wait()
}

func TestPump_ReturnsOnClose(t *testing.T) {
	defer verifyNoLeaks(t)

	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)

	sigCh := make(chan os.Signal, 1)
	wake := make(chan struct{}, 1)

	var pending atomic.Int64

	done := make(chan struct{})

	go func() {
		Pump(ctx, sigCh, &pending, wake)
		close(done)
	}()

	close(sigCh)

	select {
	case <-done:
		// ok
	case <-time.After(time.Second):
		t.Fatal("Pump should return when the signal channel closes")
	}
}

func TestPump_ReturnsOnContextCancel(t *testing.T) {
	defer verifyNoLeaks(t)

	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	sigCh := make(chan os.Signal, 1)
	wake := make(chan struct{}, 1)

	var pending atomic.Int64

	done := make(chan struct{})

	go func() {
		Pump(ctx, sigCh, &pending, wake)
		close(done)
	}()

	cancel()

	select {
	case <-done:
		// ok
	case <-time.After(time.Second):
		t.Fatal("Pump should return when the context is cancelled")
	}

	if pending.Load() != 0 {
		t.Errorf("pending = %d, want 0", pending.Load())
	}
}
