// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		logger *slog.Logger
	}{
		{
			name:   "with custom logger",
			logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
		},
		{
			name:   "with nil logger should use default",
			logger: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := New(context.Background(), tt.logger)
			logger := Logger(ctx)

			if tt.logger == nil {
				if logger != DefaultLogger {
					t.Errorf("New() with nil logger should return DefaultLogger")
				}

				return
			}

			if logger == nil {
				t.Errorf("New() returned nil logger")
			}
		})
	}
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name          string
		setupContext  func() context.Context
		expectDefault bool
	}{
		{
			name: "context with logger",
			setupContext: func() context.Context {
				logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
				return New(context.Background(), logger)
			},
			expectDefault: false,
		},
		{
			name: "context without logger",
			setupContext: func() context.Context {
				return context.Background()
			},
			expectDefault: true,
		},
		{
			name: "context with wrong type value",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), loggerKey{}, "not a logger")
			},
			expectDefault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := Logger(tt.setupContext())

			if tt.expectDefault && logger != DefaultLogger {
				t.Errorf("Logger() should return DefaultLogger when no valid logger in context")
			}

			if !tt.expectDefault && logger == DefaultLogger {
				t.Errorf("Logger() should not return DefaultLogger when context has logger")
			}
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx := New(context.Background(), logger)

	tests := []struct {
		name     string
		logFunc  func(context.Context, string, ...any)
		message  string
		expected string
	}{
		{name: "Info logging", logFunc: Info, message: "test info message", expected: "INFO"},
		{name: "Debug logging", logFunc: Debug, message: "test debug message", expected: "DEBUG"},
		{name: "Warn logging", logFunc: Warn, message: "test warning message", expected: "WARN"},
		{name: "Error logging", logFunc: Error, message: "test error message", expected: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc(ctx, tt.message, "key", "value")

			output := buf.String()
			assert.Contains(t, output, tt.expected)
			assert.Contains(t, output, tt.message)
		})
	}
}

func TestLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		name          string
		envValue      string
		expectedLevel slog.Level
	}{
		{name: "DEBUG level", envValue: "DEBUG", expectedLevel: slog.LevelDebug},
		{name: "INFO level", envValue: "INFO", expectedLevel: slog.LevelInfo},
		{name: "WARN level", envValue: "WARN", expectedLevel: slog.LevelWarn},
		{name: "ERROR level", envValue: "ERROR", expectedLevel: slog.LevelError},
		{name: "Invalid level defaults to INFO", envValue: "INVALID", expectedLevel: slog.LevelInfo},
		{name: "Empty level defaults to INFO", envValue: "", expectedLevel: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(LogLevelEnvVar, tt.envValue)

			assert.Equal(t, tt.expectedLevel, logLevelFromEnv(), "logLevelFromEnv() should return the expected log level")
		})
	}
}

func TestReinitSetsAndClearsPrefix(t *testing.T) {
	origLogger := DefaultLogger
	origLevel := LevelVar.Level()

	t.Cleanup(func() {
		DefaultLogger = origLogger
		LevelVar.Set(origLevel)
	})

	t.Setenv(LogLevelEnvVar, "DEBUG")

	Reinit("[worker a 42/41]")

	assert.NotSame(t, origLogger, DefaultLogger, "Reinit should replace the default logger")
	assert.Equal(t, slog.LevelDebug, LevelVar.Level(), "Reinit should re-read the level from the environment")

	var buf bytes.Buffer

	handler := NewPrettyHandler(&slog.HandlerOptions{Level: LevelVar},
		WithDestinationWriter(&buf),
		WithPrefix("[worker a 42/41]"),
	)
	slog.New(handler).Info("hello")

	assert.Contains(t, buf.String(), "[worker a 42/41]", "expected worker prefix in output")

	buf.Reset()

	handler = NewPrettyHandler(&slog.HandlerOptions{Level: LevelVar},
		WithDestinationWriter(&buf),
		WithPrefix(""),
	)
	slog.New(handler).Info("hello")

	assert.False(t, strings.Contains(buf.String(), "worker a"), "expected no prefix after clearing")
}

func TestDefaultLogger(t *testing.T) {
	assert.NotNil(t, DefaultLogger, "DefaultLogger should not be nil")

	originalLevel := LevelVar.Level()
	defer LevelVar.Set(originalLevel)

	LevelVar.Set(slog.LevelDebug)

	assert.True(t,
		DefaultLogger.Enabled(context.Background(), slog.LevelInfo),
		"DefaultLogger should be enabled for INFO",
	)
}

func TestJSONLogger(t *testing.T) {
	assert.NotNil(t, JSONLogger, "JSONLogger should not be nil")

	originalLevel := LevelVar.Level()
	defer LevelVar.Set(originalLevel)

	LevelVar.Set(slog.LevelDebug)

	assert.True(
		t,
		JSONLogger.Enabled(context.Background(), slog.LevelInfo),
		"JSONLogger should be enabled for INFO level when LevelVar is set to DEBUG",
	)
}
