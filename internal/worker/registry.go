// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package worker

import (
	"context"
	"errors"
)

// ErrUnknownCallback is returned when a callback name is not registered.
var ErrUnknownCallback = errors.New("unknown callback")

// Func is a work callback. It runs inside a worker process with the job
// identifier and the opaque argument payload configured for the run.
// A nil return exits the worker with status 0, anything else with status 1.
// The callback communicates with the parent only through its exit code and
// external side effects.
type Func func(ctx context.Context, jobID string, args []string) error

// Registry holds the mapping between callback names and work callbacks.
type Registry map[string]Func

// DefaultRegistry is the default registry for work callbacks.
var DefaultRegistry = make(Registry)

// Register registers a work callback under a name. A closure cannot cross
// the exec boundary, so workers find their callback by name; parent and
// worker share the registry because they are the same binary. Register
// everything before calling [Init].
func Register(name string, fn Func) {
	DefaultRegistry[name] = fn
}

// Registered reports whether a callback is registered under name.
func Registered(name string) bool {
	_, ok := DefaultRegistry[name]

	return ok
}
