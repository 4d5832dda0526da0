// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pool

import "github.com/spf13/afero"

// FsFactory is a function that returns the afero filesystem used to resolve
// the configured working directory before a worker is spawned.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}
