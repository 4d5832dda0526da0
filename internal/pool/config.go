// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pool

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultPollInterval is the fallback wakeup period for the slot wait
	// and the final collection phase. SIGCHLD normally wakes both early;
	// the tick only guards against coalesced or lost notifications.
	DefaultPollInterval = 200 * time.Millisecond
	// DefaultSpawnDelay is the brief yield after each successful spawn,
	// keeping a large job list from starting as a single spawn storm.
	DefaultSpawnDelay = 100 * time.Millisecond
	// DefaultRetryBackoff is the pause before retrying a transient
	// process-creation failure such as a full process table.
	DefaultRetryBackoff = 5 * time.Second
	// DefaultMaxSpawnAttempts bounds the retries for one job.
	DefaultMaxSpawnAttempts = 3
)

var (
	// ErrNoCallback is returned when the configuration names no work callback.
	ErrNoCallback = errors.New("no work callback configured")
	// ErrInvalidCeiling is returned when the concurrency ceiling is negative.
	ErrInvalidCeiling = errors.New("concurrency ceiling must be zero or positive")
	// ErrInvalidUmask is returned when the umask is outside the permission-bit
	// range. The worker applies the value verbatim, so it must already be a
	// valid umask here.
	ErrInvalidUmask = errors.New("umask must be between 0 and 0777")
	// ErrDuplicateJob is returned when the same job id appears twice in the
	// job sequence. Each job id is dispatched at most once.
	ErrDuplicateJob = errors.New("duplicate job id")
)

const maxUmask = 0o777

// Config describes one run. It is copied at construction time and never
// read from the caller again, so a run cannot be reconfigured in flight.
type Config struct {
	// Jobs is the ordered sequence of job identifiers. Jobs are dispatched
	// in this order and ids must be unique. Identifiers are opaque to the
	// pool; they name redirect files and are passed to the callback.
	Jobs []string

	// Callback is the name of the registered work callback every worker
	// invokes. See worker.Register.
	Callback string

	// Args is the opaque argument payload handed to the callback in every
	// worker.
	Args []string

	// MaxWorkers caps how many workers run simultaneously. Zero means
	// unbounded: every job may spawn without waiting on its siblings.
	MaxWorkers int

	// WorkDir is the working directory for workers. When it does not exist
	// the worker falls back to the filesystem root; when empty the worker
	// inherits the controller's directory.
	WorkDir string

	// Umask is applied inside every worker. The zero value is a real
	// umask of 0, as for a classic daemon, not "inherit".
	Umask int

	// NewSession makes each worker a session leader, detaching it from the
	// controlling terminal and from the controller's process group.
	NewSession bool

	// RedirectPath is the base path for worker output. When set, a worker's
	// stdout and stderr both append to "<RedirectPath>.<jobID>". When empty
	// workers inherit the controller's stdout and stderr.
	RedirectPath string

	// PollInterval, SpawnDelay, RetryBackoff and MaxSpawnAttempts tune the
	// dispatch loop. Zero or negative values fall back to the defaults.
	PollInterval     time.Duration
	SpawnDelay       time.Duration
	RetryBackoff     time.Duration
	MaxSpawnAttempts int
}

// withDefaults fills the tunables that were left at their zero values.
func (c *Config) withDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}

	if c.SpawnDelay <= 0 {
		c.SpawnDelay = DefaultSpawnDelay
	}

	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}

	if c.MaxSpawnAttempts <= 0 {
		c.MaxSpawnAttempts = DefaultMaxSpawnAttempts
	}
}

// validate rejects configurations the dispatch loop cannot honour.
func (c *Config) validate() error {
	if c.Callback == "" {
		return ErrNoCallback
	}

	if c.MaxWorkers < 0 {
		return ErrInvalidCeiling
	}

	if c.Umask < 0 || c.Umask > maxUmask {
		return ErrInvalidUmask
	}

	seen := make(map[string]struct{}, len(c.Jobs))
	for _, id := range c.Jobs {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateJob, id)
		}

		seen[id] = struct{}{}
	}

	return nil
}
