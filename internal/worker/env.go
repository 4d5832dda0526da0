// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package worker

import "strconv"

const (
	// MarkerEnvVar carries the registered callback name. Its presence is
	// what makes a process a worker: [Init] is a no-op without it.
	MarkerEnvVar = "PPOOL_WORKER"
	// UmaskEnvVar carries the umask to apply in the worker, in octal.
	UmaskEnvVar = "PPOOL_UMASK"
)

// Environ returns the variables the spawner appends to a worker's
// environment. The job identifier and the argument payload travel in argv,
// not the environment. The umask is always forwarded, zero included: a
// zero umask is a real umask, not "inherit".
func Environ(callback string, umask int) []string {
	return []string{
		MarkerEnvVar + "=" + callback,
		UmaskEnvVar + "=" + strconv.FormatInt(int64(umask), 8),
	}
}
