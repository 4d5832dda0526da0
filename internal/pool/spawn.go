// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
	"github.com/matt-FFFFFF/ppool/internal/worker"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

const redirectFileMode = 0o644

var (
	// ErrSpawn is returned when a worker process could not be created.
	ErrSpawn = errors.New("could not start worker process")
	// ErrNullDevice is returned when the null device for worker stdin
	// could not be opened.
	ErrNullDevice = errors.New("could not open null device")
	// ErrRedirect is returned when a worker's output redirect file could
	// not be opened.
	ErrRedirect = errors.New("could not open redirect file")
)

// osStartProcess is swapped out in tests.
var osStartProcess = os.StartProcess

// launch creates one worker process for jobID and returns its handle.
//
// The worker is a fresh copy of the current executable. Detachment happens
// on both sides of the exec: here the working directory, the null-device
// stdin, the output redirect and the session flag are applied through the
// process attributes, and the umask travels in the environment for the
// worker to apply on itself (see worker.Init). Only the three standard
// descriptors are passed, so no inherited file descriptor above stderr
// reaches the worker. Both opens carry O_NOCTTY so the worker cannot
// acquire a controlling terminal through them.
func launch(ctx context.Context, cfg *Config, jobID string) (*os.Process, error) {
	logger := ctxlog.Logger(ctx)

	// The registry is shared between controller and worker because they are
	// the same binary: a name unknown here is unknown in the worker too, so
	// fail before paying for a process.
	if !worker.Registered(cfg.Callback) {
		return nil, errors.Join(ErrSpawn, worker.ErrUnknownCallback)
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, errors.Join(ErrSpawn, err)
	}

	stdin, err := os.OpenFile(os.DevNull, os.O_RDONLY|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, errors.Join(ErrNullDevice, err)
	}

	defer stdin.Close() //nolint:errcheck

	stdout, stderr := os.Stdout, os.Stderr

	if cfg.RedirectPath != "" {
		name := cfg.RedirectPath + "." + jobID

		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND|unix.O_NOCTTY, redirectFileMode)
		if err != nil {
			return nil, errors.Join(ErrRedirect, err)
		}

		defer f.Close() //nolint:errcheck

		logger.Debug("redirecting worker output", "job", jobID, "path", name)

		stdout, stderr = f, f
	}

	argv := slices.Concat([]string{filepath.Base(exe), jobID}, cfg.Args)
	env := slices.Concat(os.Environ(), worker.Environ(cfg.Callback, cfg.Umask))

	ps, err := osStartProcess(exe, argv, &os.ProcAttr{
		Dir:   resolveWorkDir(ctx, cfg.WorkDir),
		Env:   env,
		Files: []*os.File{stdin, stdout, stderr},
		Sys:   &syscall.SysProcAttr{Setsid: cfg.NewSession},
	})
	if err != nil {
		return nil, errors.Join(ErrSpawn, err)
	}

	return ps, nil
}

// retryableSpawn reports whether a process-creation failure is transient
// resource exhaustion, which clears as other processes exit, rather than a
// permanent condition.
func retryableSpawn(err error) bool {
	return errors.Is(err, unix.EAGAIN) ||
		errors.Is(err, unix.ENOMEM) ||
		errors.Is(err, unix.EMFILE) ||
		errors.Is(err, unix.ENFILE)
}

// resolveWorkDir maps the configured working directory to the one the
// worker gets. Unset stays unset (the worker inherits the controller's
// directory) and a directory that does not exist falls back to the
// filesystem root rather than failing the spawn.
func resolveWorkDir(ctx context.Context, workDir string) string {
	if workDir == "" {
		return ""
	}

	ok, err := afero.DirExists(FsFactory(), workDir)
	if err != nil || !ok {
		ctxlog.Warn(ctx, "configured working directory missing, using filesystem root",
			"workDir", workDir, "error", err)

		return "/"
	}

	return workDir
}
