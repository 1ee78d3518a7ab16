// Package logging builds the logger injected into the download core and the
// front ends. Nothing in the module logs through a process-wide logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger is the logging capability handed to tasks and services.
// *slog.Logger satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Default values
const (
	DefaultLogPath = "log.txt"
)

// Options configures a logger built by New
type Options struct {
	Enabled bool
	Path    string    // log file, truncated on open; empty disables file output
	Console io.Writer // console sink, nil disables console output
	Level   slog.Level
}

// New returns a logger writing to the configured sinks and a closer for the log file.
// A disabled logger discards every record.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	if !opts.Enabled {
		return Discard(), nopCloser{}, nil
	}

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.Path != "" {
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", opts.Path, err)
		}
		writers = append(writers, f)
		closer = f
	}
	if opts.Console != nil {
		writers = append(writers, opts.Console)
	}
	if len(writers) == 0 {
		return Discard(), closer, nil
	}

	h := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: opts.Level})
	return slog.New(h), closer, nil
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
