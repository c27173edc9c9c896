// Package logging builds the structured logger shared by the CLI and engine.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w. Debug enables DEBUG records.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
