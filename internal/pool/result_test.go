// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pool

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func successfulResult() *Result {
	return &Result{
		Statuses: map[int]int{101: 0, 202: 0},
		Jobs: map[string]JobStatus{
			"a": {PID: 101, Collected: true},
			"b": {PID: 202, Collected: true},
		},
		order: []string{"a", "b"},
	}
}

func failedResult(spawnErr error) *Result {
	return &Result{
		Statuses: map[int]int{101: 0, 303: 7},
		Jobs: map[string]JobStatus{
			"a": {PID: 101, Collected: true},
			"b": {SpawnErr: spawnErr},
			"c": {PID: 303, ExitStatus: 7, Collected: true},
		},
		order: []string{"a", "b", "c"},
	}
}

func TestResult_Success(t *testing.T) {
	res := successfulResult()

	assert.True(t, res.Success())
	assert.NoError(t, res.Err())
}

func TestResult_FailuresInDispatchOrder(t *testing.T) {
	spawnErr := errors.Join(ErrSpawn, errors.New("exec format error"))
	res := failedResult(spawnErr)

	assert.False(t, res.Success())

	err := res.Err()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSpawn)

	msg := err.Error()
	assert.Contains(t, msg, `job "b"`)
	assert.Contains(t, msg, `job "c": pid 303 exited with status 7`)
	assert.Less(t, strings.Index(msg, `job "b"`), strings.Index(msg, `job "c"`),
		"failures must be reported in dispatch order")
	assert.NotContains(t, msg, `job "a"`)
}

func TestJobStatus_Failed(t *testing.T) {
	assert.False(t, JobStatus{PID: 1, Collected: true}.Failed())
	assert.True(t, JobStatus{PID: 1, ExitStatus: 1, Collected: true}.Failed())
	assert.True(t, JobStatus{SpawnErr: errors.New("boom")}.Failed())
	assert.False(t, JobStatus{PID: 1}.Failed(), "an uncollected worker has not failed yet")
}

func TestResult_JobIDsReturnsCopy(t *testing.T) {
	res := successfulResult()

	ids := res.JobIDs()
	require.Equal(t, []string{"a", "b"}, ids)

	ids[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, res.JobIDs())
}

func TestWriteText(t *testing.T) {
	spawnErr := errors.Join(ErrSpawn, errors.New("exec format error"))
	res := failedResult(spawnErr)

	var sb strings.Builder
	require.NoError(t, res.WriteText(&sb))

	out := sb.String()

	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "(pid 101)")
	assert.Contains(t, out, "➜ Error:")
	assert.Contains(t, out, "exec format error")
	assert.Contains(t, out, "(pid 303, exit status 7)")
	assert.Contains(t, out, "3 jobs, 2 failed")
}

func TestWriteText_PartialRecord(t *testing.T) {
	res := &Result{
		Jobs:  map[string]JobStatus{},
		order: []string{"never-started"},
	}

	var sb strings.Builder
	require.NoError(t, res.WriteText(&sb))

	out := sb.String()
	assert.Contains(t, out, "never-started")
	assert.Contains(t, out, "(not dispatched)")
	assert.Contains(t, out, "1 jobs, 0 failed")
}

func TestResult_WriteMatchesWriteText(t *testing.T) {
	res := successfulResult()

	var a, b strings.Builder

	require.NoError(t, res.Write(&a))
	require.NoError(t, res.WriteText(&b))

	assert.Equal(t, b.String(), a.String())
}
