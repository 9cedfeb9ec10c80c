// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// newLogger creates the process logger. When output is a terminal it
// uses slog.TextHandler for human-readable lines; otherwise
// slog.JSONHandler, so piped output stays machine-parseable.
func newLogger(output io.Writer, level string) (*slog.Logger, error) {
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}

	options := &slog.HandlerOptions{Level: parsed}
	var handler slog.Handler
	if isTerminal(output) {
		handler = slog.NewTextHandler(output, options)
	} else {
		handler = slog.NewJSONHandler(output, options)
	}
	return slog.New(handler), nil
}

func isTerminal(output io.Writer) bool {
	file, ok := output.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
