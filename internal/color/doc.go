// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color colorizes strings with ANSI escape codes for the console
// log handler. The NO_COLOR and FORCE_COLOR environment variables override
// terminal detection, which uses the golang.org/x/term package on stdout.
package color
