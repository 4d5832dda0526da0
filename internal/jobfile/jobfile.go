// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package jobfile reads the YAML definition of a pool run for the ppool
// CLI. A jobfile names a shell command line and the ordered list of job
// identifiers to run it for; ToConfig turns it into a pool.Config wired to
// the built-in shell callback.
package jobfile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/ppool/internal/pool"
	"github.com/matt-FFFFFF/ppool/internal/shellfunc"
)

const maxUmask = 0o777

var (
	// ErrInvalidYAML is returned when the jobfile is not parseable YAML.
	ErrInvalidYAML = errors.New("invalid YAML")
	// ErrNoCommandLine is returned when the jobfile has no command_line.
	ErrNoCommandLine = errors.New("no command_line specified")
	// ErrNoJobs is returned when the jobfile lists no jobs.
	ErrNoJobs = errors.New("no jobs specified")
	// ErrDuplicateJob is returned when a job id appears more than once.
	ErrDuplicateJob = errors.New("duplicate job id")
	// ErrInvalidMaxWorkers is returned when max_workers is negative.
	ErrInvalidMaxWorkers = errors.New("max_workers must be zero or positive")
	// ErrInvalidUmask is returned when the umask is not an octal string in
	// the range 0 to 777.
	ErrInvalidUmask = errors.New("umask must be an octal string between 0 and 777")
)

// Definition is the YAML definition of one pool run. The json tags mirror
// the yaml ones so "ppool show" renders the same field names.
type Definition struct {
	// Name labels the run in logs and in show output.
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// CommandLine is the shell command executed for every job. The job id
	// is $1 inside the command line and Args become $2 onward.
	CommandLine string   `yaml:"command_line" json:"command_line"`
	Args        []string `yaml:"args,omitempty" json:"args,omitempty"`

	// Jobs is the ordered list of job identifiers.
	Jobs []string `yaml:"jobs" json:"jobs"`

	MaxWorkers       int    `yaml:"max_workers,omitempty" json:"max_workers"`
	WorkingDirectory string `yaml:"working_directory,omitempty" json:"working_directory,omitempty"`

	// Umask is an octal string, e.g. "022". Empty means zero.
	Umask string `yaml:"umask,omitempty" json:"umask,omitempty"`

	NewSession   bool   `yaml:"new_session,omitempty" json:"new_session"`
	RedirectPath string `yaml:"redirect_path,omitempty" json:"redirect_path,omitempty"`
}

// Parse unmarshals a jobfile.
func Parse(data []byte) (*Definition, error) {
	def := new(Definition)
	if err := yaml.Unmarshal(data, def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return def, nil
}

// Validate checks the definition and reports every problem at once rather
// than stopping at the first.
func (d *Definition) Validate() error {
	var merr *multierror.Error

	if d.CommandLine == "" {
		merr = multierror.Append(merr, ErrNoCommandLine)
	}

	if len(d.Jobs) == 0 {
		merr = multierror.Append(merr, ErrNoJobs)
	}

	seen := make(map[string]struct{}, len(d.Jobs))

	for _, id := range d.Jobs {
		if _, ok := seen[id]; ok {
			merr = multierror.Append(merr, fmt.Errorf("%w: %q", ErrDuplicateJob, id))
		}

		seen[id] = struct{}{}
	}

	if d.MaxWorkers < 0 {
		merr = multierror.Append(merr, fmt.Errorf("%w: %d", ErrInvalidMaxWorkers, d.MaxWorkers))
	}

	if _, err := parseUmask(d.Umask); err != nil {
		merr = multierror.Append(merr, err)
	}

	return merr.ErrorOrNil()
}

// ToConfig maps the definition onto a pool configuration bound to the
// built-in shell callback.
func (d *Definition) ToConfig() (pool.Config, error) {
	umask, err := parseUmask(d.Umask)
	if err != nil {
		return pool.Config{}, err
	}

	return pool.Config{
		Jobs:         slices.Clone(d.Jobs),
		Callback:     shellfunc.Name,
		Args:         slices.Concat([]string{d.CommandLine}, d.Args),
		MaxWorkers:   d.MaxWorkers,
		WorkDir:      d.WorkingDirectory,
		Umask:        umask,
		NewSession:   d.NewSession,
		RedirectPath: d.RedirectPath,
	}, nil
}

// Load fetches, parses and validates a jobfile from a go-getter URL.
func Load(ctx context.Context, url string) (*Definition, error) {
	data, err := Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("jobfile %q: %w", url, err)
	}

	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("jobfile %q: %w", url, err)
	}

	return def, nil
}

func parseUmask(v string) (int, error) {
	if v == "" {
		return 0, nil
	}

	mask, err := strconv.ParseInt(v, 8, 32)
	if err != nil || mask < 0 || mask > maxUmask {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUmask, v)
	}

	return int(mask), nil
}
