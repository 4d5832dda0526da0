// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pool

import (
	"fmt"
	"io"

	"github.com/matt-FFFFFF/ppool/internal/color"
)

// WriteText writes one status line per job, in dispatch order, followed by
// a summary line. Successful jobs get a green check, failed workers a red
// cross with the exit status, and jobs that never produced a process a red
// cross with the spawn error.
func (r *Result) WriteText(w io.Writer) error {
	failed := 0

	for _, id := range r.order {
		js, ok := r.Jobs[id]
		if !ok {
			// Only possible when formatting a partial record; a finished
			// run has an entry for every job.
			if _, err := fmt.Fprintf(w, "%s %s (not dispatched)\n",
				color.Colorize("?", color.FgWhite), id); err != nil {
				return err
			}

			continue
		}

		if js.Failed() {
			failed++
		}

		if err := writeJobLine(w, id, js); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%d jobs, %d failed\n", len(r.order), failed)

	return err
}

func writeJobLine(w io.Writer, id string, js JobStatus) error {
	var statusStr, labelPrefix string

	switch {
	case js.Failed():
		statusStr = color.Colorize("✗", color.FgRed)
		labelPrefix = color.ControlString(color.Bold, color.FgRed)
	default:
		statusStr = color.Colorize("✓", color.FgGreen)
		labelPrefix = color.ControlString(color.Bold, color.FgGreen)
	}

	if _, err := fmt.Fprintf(w, "%s %s%s%s",
		statusStr, labelPrefix, id, color.ControlString(color.Reset)); err != nil {
		return err
	}

	switch {
	case js.SpawnErr != nil:
		if _, err := fmt.Fprintf(w, "\n  %s %s%s\n",
			color.ColorizeNoReset("➜ Error:", color.FgRed),
			js.SpawnErr.Error(),
			color.ControlString(color.Reset)); err != nil {
			return err
		}

		return nil
	case js.Collected && js.ExitStatus != 0:
		_, err := fmt.Fprintf(w, " (pid %d, exit status %d)\n", js.PID, js.ExitStatus)

		return err
	case js.Collected:
		_, err := fmt.Fprintf(w, " (pid %d)\n", js.PID)

		return err
	}

	_, err := fmt.Fprintf(w, " (pid %d, not collected)\n", js.PID)

	return err
}
