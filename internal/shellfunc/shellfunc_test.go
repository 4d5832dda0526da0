// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shellfunc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/ppool/internal/ctxlog"
	"github.com/matt-FFFFFF/ppool/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()

	return ctxlog.New(context.Background(), ctxlog.DefaultLogger)
}

func TestRun_JobIDIsDollarOne(t *testing.T) {
	dir := t.TempDir()

	err := Run(testCtx(t), "job-42", []string{`printf '%s' "$1" > "$2/$1.out"`, dir})
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "job-42.out"))
	require.NoError(t, err)
	assert.Equal(t, "job-42", string(b))
}

func TestRun_NonzeroExitIsAnError(t *testing.T) {
	err := Run(testCtx(t), "j1", []string{"exit 3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `job "j1"`)
}

func TestRun_EmptyCommandLine(t *testing.T) {
	require.ErrorIs(t, Run(testCtx(t), "j1", nil), ErrEmptyCommand)
	require.ErrorIs(t, Run(testCtx(t), "j1", []string{""}), ErrEmptyCommand)
}

func TestDefaultShell(t *testing.T) {
	t.Setenv("SHELL", "/bin/sh")
	assert.Equal(t, "/bin/sh", defaultShell(testCtx(t)))

	t.Setenv("SHELL", "")
	assert.Equal(t, binSh, defaultShell(testCtx(t)))
}

func TestRegister(t *testing.T) {
	Register()

	assert.True(t, worker.Registered(Name))
}
