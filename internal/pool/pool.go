// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
	"github.com/matt-FFFFFF/ppool/internal/signalbroker"
)

var (
	// ErrAlreadyRun is returned when Run is called twice on the same pool.
	ErrAlreadyRun = errors.New("pool has already run")
	// ErrLostWorkers is returned when tracked workers disappeared without
	// passing through the pool's own collection, which happens when
	// something else in the process waits on its children during a run.
	ErrLostWorkers = errors.New("tracked workers were collected outside the pool")
)

// workerProcess is one live worker.
type workerProcess struct {
	pid       int
	jobID     string
	startedAt time.Time
}

// Pool dispatches a configured job sequence, one worker process per job.
// A pool runs exactly once. All fields are owned by the goroutine inside
// Run; nothing here is safe for concurrent use.
type Pool struct {
	cfg      Config
	running  map[int]workerProcess
	statuses map[int]int
	jobs     map[string]JobStatus
	term     chan os.Signal
	rp       *reaper
	ran      bool
}

// New validates the configuration and prepares a pool for one run.
func New(cfg Config) (*Pool, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.withDefaults()

	return &Pool{
		cfg:      cfg,
		running:  make(map[int]workerProcess),
		statuses: make(map[int]int),
		jobs:     make(map[string]JobStatus, len(cfg.Jobs)),
	}, nil
}

// Run dispatches every job in order, throttled by the concurrency ceiling,
// then blocks until the last worker has been collected. It returns the
// collected outcomes plus ErrJobsFailed when any job failed, or nil results
// and ErrTerminated when a termination signal or context cancellation
// aborted the run.
func (p *Pool) Run(ctx context.Context) (*Result, error) {
	if p.ran {
		return nil, ErrAlreadyRun
	}

	p.ran = true

	logger := ctxlog.Logger(ctx)
	logger.Info("starting run",
		"jobs", len(p.cfg.Jobs),
		"maxWorkers", p.cfg.MaxWorkers,
		"callback", p.cfg.Callback)

	// Both subscriptions must exist before the first spawn: a worker that
	// exits instantly must still produce a wakeup, and a signal that lands
	// mid-dispatch must be observed at the next blocking point.
	p.term = signalbroker.New(ctx)
	defer signalbroker.Stop(p.term)

	p.rp = newReaper(ctx)
	defer p.rp.close()

	for _, jobID := range p.cfg.Jobs {
		if err := p.waitForSlot(ctx); err != nil {
			return p.fail(ctx, err)
		}

		if err := p.dispatch(ctx, jobID); err != nil {
			return p.fail(ctx, err)
		}
	}

	if err := p.collectRemaining(ctx); err != nil {
		return p.fail(ctx, err)
	}

	res := &Result{
		Statuses: p.statuses,
		Jobs:     p.jobs,
		order:    slices.Clone(p.cfg.Jobs),
	}

	if err := res.Err(); err != nil {
		logger.Error("run finished with failures", "jobs", len(p.cfg.Jobs))

		return res, errors.Join(ErrJobsFailed, err)
	}

	logger.Info("run finished, all jobs succeeded", "jobs", len(p.cfg.Jobs))

	return res, nil
}

// fail finishes an aborted run. Termination tears the workers down; any
// other failure leaves them alone, since whatever is still running will be
// collected by no one and signalling the process group would be wrong.
func (p *Pool) fail(ctx context.Context, err error) (*Result, error) {
	if errors.Is(err, ErrTerminated) {
		p.terminateAll(ctx)
	}

	return nil, err
}

// waitForSlot blocks until the running set is below the ceiling. Wakeups
// come from SIGCHLD; the poll interval is only a safety net against
// coalesced notifications. A ceiling of zero never blocks.
func (p *Pool) waitForSlot(ctx context.Context) error {
	if _, err := p.reap(ctx); err != nil {
		return err
	}

	if err := p.checkTerm(ctx); err != nil {
		return err
	}

	if p.cfg.MaxWorkers == 0 {
		return nil
	}

	for len(p.running) >= p.cfg.MaxWorkers {
		select {
		case sig := <-p.term:
			return fmt.Errorf("%w: received %s", ErrTerminated, sig)
		case <-ctx.Done():
			return errors.Join(ErrTerminated, ctx.Err())
		case <-p.rp.wake:
		case <-time.After(p.cfg.PollInterval):
		}

		if _, err := p.reap(ctx); err != nil {
			return err
		}
	}

	return nil
}

// dispatch starts one worker for jobID. Transient creation failures are
// retried after a backoff, up to the attempt bound; any other failure, or
// running out of attempts, records the job as failed-to-spawn and lets the
// run move on to the next job. Only a termination trigger makes dispatch
// return an error.
func (p *Pool) dispatch(ctx context.Context, jobID string) error {
	logger := ctxlog.Logger(ctx)

	for attempt := 1; ; attempt++ {
		ps, err := launch(ctx, &p.cfg, jobID)
		if err == nil {
			pid := ps.Pid

			// Collection is wait4 based. Dropping the handle immediately
			// means nothing can double-wait on the worker.
			_ = ps.Release()

			p.running[pid] = workerProcess{pid: pid, jobID: jobID, startedAt: time.Now()}
			p.jobs[jobID] = JobStatus{PID: pid}

			logger.Info("worker started", "job", jobID, "pid", pid, "running", len(p.running))

			return p.pause(ctx, p.cfg.SpawnDelay)
		}

		if !retryableSpawn(err) || attempt >= p.cfg.MaxSpawnAttempts {
			logger.Error("could not start worker, job counts as failed",
				"job", jobID, "attempts", attempt, "error", err)

			p.jobs[jobID] = JobStatus{SpawnErr: err}

			return nil
		}

		logger.Warn("transient spawn failure, backing off",
			"job", jobID, "attempt", attempt, "backoff", p.cfg.RetryBackoff.String(), "error", err)

		if err := p.pause(ctx, p.cfg.RetryBackoff); err != nil {
			return err
		}
	}
}

// collectRemaining blocks until every tracked worker has been collected.
// Dispatch is over by the time this runs, so the only exits from the loop
// are an empty running set, a termination trigger, or lost workers.
func (p *Pool) collectRemaining(ctx context.Context) error {
	for len(p.running) > 0 {
		n, err := p.reap(ctx)
		if err != nil {
			return err
		}

		if n > 0 {
			continue
		}

		select {
		case sig := <-p.term:
			return fmt.Errorf("%w: received %s", ErrTerminated, sig)
		case <-ctx.Done():
			return errors.Join(ErrTerminated, ctx.Err())
		case <-p.rp.wake:
		case <-time.After(p.cfg.PollInterval):
		}
	}

	return nil
}

// reap drains terminated children into the tracking tables.
func (p *Pool) reap(ctx context.Context) (int, error) {
	n, noChildren := p.rp.drain(ctx, func(pid, status int) {
		p.recordExit(ctx, pid, status)
	})

	if noChildren && len(p.running) > 0 {
		return n, fmt.Errorf("%w: %d still tracked", ErrLostWorkers, len(p.running))
	}

	return n, nil
}

// recordExit moves one pid from the running set to the status table.
func (p *Pool) recordExit(ctx context.Context, pid, status int) {
	wp, ok := p.running[pid]
	if !ok {
		// Not ours to record, e.g. a fire-and-forget worker from Dispatch.
		ctxlog.Debug(ctx, "reaped untracked process", "pid", pid, "status", status)

		return
	}

	p.statuses[pid] = status

	js := p.jobs[wp.jobID]
	js.ExitStatus = status
	js.Collected = true
	p.jobs[wp.jobID] = js

	delete(p.running, pid)

	ctxlog.Logger(ctx).Info("worker exited",
		"job", wp.jobID,
		"pid", pid,
		"status", status,
		"after", time.Since(wp.startedAt).Round(time.Millisecond).String(),
		"running", len(p.running))
}

// checkTerm is the non-blocking termination check used between jobs, so a
// signal that arrived while a slot was free still stops dispatch before
// the next spawn.
func (p *Pool) checkTerm(ctx context.Context) error {
	select {
	case sig := <-p.term:
		return fmt.Errorf("%w: received %s", ErrTerminated, sig)
	case <-ctx.Done():
		return errors.Join(ErrTerminated, ctx.Err())
	default:
		return nil
	}
}

// pause waits for d, cut short by a termination trigger.
func (p *Pool) pause(ctx context.Context, d time.Duration) error {
	select {
	case sig := <-p.term:
		return fmt.Errorf("%w: received %s", ErrTerminated, sig)
	case <-ctx.Done():
		return errors.Join(ErrTerminated, ctx.Err())
	case <-time.After(d):
		return nil
	}
}
