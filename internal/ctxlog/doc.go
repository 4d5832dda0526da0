// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-aware logger that can be used to log messages.
// It uses the slog package for structured logging and supports different log levels.
//
// The default is a pretty console handler to format the log messages in a human-readable way.
// The log level is read from the PPOOL_LOG_LEVEL environment variable so that worker
// processes, which inherit the controller's environment, log at the same level.
// Reinit rebuilds the default logger inside a worker and applies the worker line prefix.
package ctxlog
