// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"log/slog"
	"os"
)

// LogLevelEnvVar is the environment variable that sets the log level.
// Accepted values are "DEBUG", "INFO", "WARN" and "ERROR"; anything else
// falls back to "INFO". Worker processes inherit it from the controller.
const LogLevelEnvVar = "PPOOL_LOG_LEVEL"

type loggerKey struct{}

// LevelVar is the shared log level, settable at runtime.
var LevelVar = &slog.LevelVar{}

// DefaultLogger is the pretty console logger used if no logger is provided.
var DefaultLogger = slog.New(NewPrettyHandler(&slog.HandlerOptions{
	Level: LevelVar,
},
	WithAutoColor(),
	WithDestinationWriter(os.Stdout),
))

// JSONLogger is a plain JSON logger for non-interactive use.
var JSONLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: LevelVar,
}))

func init() {
	LevelVar.Set(logLevelFromEnv())
}

// New creates a new context with the given logger.
// If logger is nil, it uses the default logger.
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger from the context, or the default logger if not found.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return DefaultLogger
	}

	return logger
}

// Reinit rebuilds the default logger from the environment and applies the
// given line prefix. A freshly spawned worker calls this so its log lines
// carry the worker prefix and nothing is shared with the parent's logger.
// An empty prefix clears a previously set one.
func Reinit(prefix string) {
	LevelVar.Set(logLevelFromEnv())

	DefaultLogger = slog.New(NewPrettyHandler(&slog.HandlerOptions{
		Level: LevelVar,
	},
		WithAutoColor(),
		WithDestinationWriter(os.Stdout),
		WithPrefix(prefix),
	))
}

// Info logs an info message with the given context.
func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Info(msg, args...)
}

// Debug logs a debug message with the given context.
func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Debug(msg, args...)
}

// Warn logs a warning message with the given context.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Warn(msg, args...)
}

// Error logs an error message with the given context.
func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Error(msg, args...)
}

func logLevelFromEnv() slog.Level {
	switch os.Getenv(LogLevelEnvVar) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
