// Package logging provides structured logging built on zerolog.
//
// Loggers travel through context.Context so that engines and stores can log
// with the trace ID and component fields of the invocation that called them
// without holding a logger of their own.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config controls how the root logger is constructed.
type Config struct {
	// Level is a zerolog level name ("debug", "info", "warn", "error").
	// Unparseable values fall back to info.
	Level string

	// Format selects the output encoding: "console" for human-readable
	// output, anything else for JSON lines.
	Format string

	// File, when non-empty, appends JSON log lines to the given path in
	// addition to the primary writer.
	File string

	// Out overrides the primary writer. Defaults to os.Stderr.
	Out io.Writer
}

// Result holds the constructed logger plus the state needed to clean up
// after the invocation finishes.
type Result struct {
	Logger zerolog.Logger

	// UsingFile reports whether a log file was opened.
	UsingFile bool

	// FilePath is the resolved log file path when UsingFile is true.
	FilePath string

	file *os.File
}

// Close releases the log file handle, if any.
func (r *Result) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// New constructs the root logger from cfg.
//
// A file that cannot be opened is not fatal: logging degrades to the primary
// writer and the returned Result reports UsingFile = false.
func New(cfg Config) Result {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	var primary io.Writer = out
	if cfg.Format == "console" {
		primary = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	writers := []io.Writer{primary}
	result := Result{}

	if cfg.File != "" {
		f, fileErr := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if fileErr == nil {
			writers = append(writers, f)
			result.UsingFile = true
			result.FilePath = cfg.File
			result.file = f
		}
	}

	result.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return result
}

// ComponentLogger returns a child logger tagged with the given component name.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// FromContext returns the logger stored in ctx, or a disabled logger when
// none was attached. Engines call this instead of holding logger fields.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
