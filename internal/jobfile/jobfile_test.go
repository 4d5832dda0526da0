// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package jobfile

import (
	"context"
	"testing"

	"github.com/matt-FFFFFF/ppool/internal/shellfunc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
name: fanout
command_line: ./run.sh "$1"
args:
  - --verbose
jobs:
  - a
  - b
max_workers: 3
working_directory: /srv/work
umask: "027"
new_session: true
redirect_path: /var/log/fanout
`

func TestParse(t *testing.T) {
	def, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "fanout", def.Name)
	assert.Equal(t, `./run.sh "$1"`, def.CommandLine)
	assert.Equal(t, []string{"--verbose"}, def.Args)
	assert.Equal(t, []string{"a", "b"}, def.Jobs)
	assert.Equal(t, 3, def.MaxWorkers)
	assert.Equal(t, "/srv/work", def.WorkingDirectory)
	assert.Equal(t, "027", def.Umask)
	assert.True(t, def.NewSession)
	assert.Equal(t, "/var/log/fanout", def.RedirectPath)
}

func TestParse_InvalidYAML(t *testing.T) {
	def, err := Parse([]byte("{unclosed"))
	require.ErrorIs(t, err, ErrInvalidYAML)
	assert.Nil(t, def)
}

func TestValidate_ReportsEveryProblemAtOnce(t *testing.T) {
	def := &Definition{
		MaxWorkers: -2,
		Umask:      "9x",
	}

	err := def.Validate()
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrNoCommandLine)
	assert.ErrorIs(t, err, ErrNoJobs)
	assert.ErrorIs(t, err, ErrInvalidMaxWorkers)
	assert.ErrorIs(t, err, ErrInvalidUmask)
}

func TestValidate_NamesDuplicateJobs(t *testing.T) {
	def := &Definition{
		CommandLine: "true",
		Jobs:        []string{"a", "b", "a"},
	}

	err := def.Validate()
	require.ErrorIs(t, err, ErrDuplicateJob)
	assert.Contains(t, err.Error(), `"a"`)
}

func TestValidate_Valid(t *testing.T) {
	def := &Definition{
		CommandLine: "true",
		Jobs:        []string{"a"},
	}

	assert.NoError(t, def.Validate())
}

func TestToConfig(t *testing.T) {
	def, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	cfg, err := def.ToConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, cfg.Jobs)
	assert.Equal(t, shellfunc.Name, cfg.Callback)
	assert.Equal(t, []string{`./run.sh "$1"`, "--verbose"}, cfg.Args)
	assert.Equal(t, 3, cfg.MaxWorkers)
	assert.Equal(t, "/srv/work", cfg.WorkDir)
	assert.Equal(t, 0o027, cfg.Umask)
	assert.True(t, cfg.NewSession)
	assert.Equal(t, "/var/log/fanout", cfg.RedirectPath)
}

func TestToConfig_BadUmask(t *testing.T) {
	def := &Definition{
		CommandLine: "true",
		Jobs:        []string{"a"},
		Umask:       "1777",
	}

	_, err := def.ToConfig()
	require.ErrorIs(t, err, ErrInvalidUmask)
}

func TestParseUmask(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{name: "empty means zero", in: "", want: 0},
		{name: "plain zero", in: "0", want: 0},
		{name: "leading zero", in: "022", want: 0o022},
		{name: "no leading zero", in: "77", want: 0o077},
		{name: "maximum", in: "777", want: 0o777},
		{name: "above maximum", in: "1000", wantErr: true},
		{name: "not octal", in: "8", wantErr: true},
		{name: "garbage", in: "umask", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseUmask(tc.in)

			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidUmask)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	def, err := Load(ctx, "./testdata/valid.yaml")
	require.NoError(t, err)
	assert.Equal(t, "nightly-fanout", def.Name)
	assert.Equal(t, []string{"eu-west", "us-east", "ap-south"}, def.Jobs)
}

func TestLoad_InvalidDefinition(t *testing.T) {
	ctx := context.Background()

	def, err := Load(ctx, "./testdata/invalid.yaml")
	require.ErrorIs(t, err, ErrNoCommandLine)
	require.ErrorIs(t, err, ErrInvalidUmask)
	assert.Nil(t, def)
	assert.Contains(t, err.Error(), "invalid.yaml")
}

func TestLoad_MissingFile(t *testing.T) {
	ctx := context.Background()

	def, err := Load(ctx, "./testdata/does-not-exist.yaml")
	require.ErrorIs(t, err, ErrFetch)
	assert.Nil(t, def)
}
