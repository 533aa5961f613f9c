// SPDX-License-Identifier: MPL-2.0

// Package logging builds the slog loggers used across modpack. Records are
// rendered by charmbracelet/log so terminal output shares the CLI's styling.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

const (
	// LevelDebug logs everything, including per-module resolution events.
	LevelDebug Level = "debug"
	// LevelInfo logs one summary line per invocation.
	LevelInfo Level = "info"
	// LevelWarn logs dependency cycles and other recoverable conditions.
	LevelWarn Level = "warn"
	// LevelError logs failures only.
	LevelError Level = "error"

	// FormatText is human-readable, colored when the writer is a terminal.
	FormatText Format = "text"
	// FormatJSON emits one JSON object per record.
	FormatJSON Format = "json"
	// FormatLogfmt emits key=value pairs.
	FormatLogfmt Format = "logfmt"
)

var (
	// ErrInvalidLevel is the sentinel error wrapped by InvalidLevelError.
	ErrInvalidLevel = errors.New("invalid log level")
	// ErrInvalidFormat is the sentinel error wrapped by InvalidFormatError.
	ErrInvalidFormat = errors.New("invalid log format")
)

type (
	// Level is a log level name.
	Level string

	// Format selects how records are rendered.
	Format string

	// InvalidLevelError is returned when a Level is not recognized.
	InvalidLevelError struct {
		Value Level
	}

	// InvalidFormatError is returned when a Format is not recognized.
	InvalidFormatError struct {
		Value Format
	}

	// Options configures New. Zero values select LevelWarn and FormatText.
	Options struct {
		Level  Level
		Format Format
		// Prefix is printed before every message in text output.
		Prefix string
		// Timestamps adds the record time to every line.
		Timestamps bool
	}
)

// Error implements the error interface.
func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (must be one of: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLevel.
func (e *InvalidLevelError) Unwrap() error { return ErrInvalidLevel }

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid log format %q (must be one of: text, json, logfmt)", e.Value)
}

// Unwrap returns ErrInvalidFormat.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// IsValid reports whether l is a known level.
func (l Level) IsValid() (bool, []error) {
	switch l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true, nil
	default:
		return false, []error{&InvalidLevelError{Value: l}}
	}
}

// IsValid reports whether f is a known format.
func (f Format) IsValid() (bool, []error) {
	switch f {
	case FormatText, FormatJSON, FormatLogfmt:
		return true, nil
	default:
		return false, []error{&InvalidFormatError{Value: f}}
	}
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	if opts.Level == "" {
		opts.Level = LevelWarn
	}
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if ok, errs := opts.Level.IsValid(); !ok {
		return nil, errs[0]
	}
	if ok, errs := opts.Format.IsValid(); !ok {
		return nil, errs[0]
	}

	level, err := log.ParseLevel(string(opts.Level))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          opts.Prefix,
		ReportTimestamp: opts.Timestamps,
		Formatter:       formatter(opts.Format),
	})
	return slog.New(handler), nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func formatter(f Format) log.Formatter {
	switch f {
	case FormatJSON:
		return log.JSONFormatter
	case FormatLogfmt:
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
