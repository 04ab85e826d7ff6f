// Package logging configures the zerolog logger shared by every component.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
)

const (
	FormatTerminal = "terminal"
	FormatJSON     = "json"
)

// Setup builds the root logger. The terminal format is colored when stdout is
// a terminal or forceColor is set.
func Setup(output io.Writer, level zerolog.Level, format string, forceColor bool) zerolog.Logger {
	o := output
	if format == FormatTerminal {
		useColor := forceColor || isatty.IsTerminal(os.Stdout.Fd())

		o = zerolog.ConsoleWriter{
			Out:        o,
			TimeFormat: time.RFC3339,
			NoColor:    !useColor,
		}
	}

	z := zerolog.New(o).With().Timestamp()
	if level <= zerolog.DebugLevel {
		z = z.Caller()
	}

	return z.Logger().Level(level)
}

// ParseLevel accepts zerolog level names; empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}

	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level, %q", s)
	}
	return level, nil
}

// ParseFormat validates a log format name; empty means terminal.
func ParseFormat(s string) (string, error) {
	switch s = strings.TrimSpace(strings.ToLower(s)); s {
	case "", FormatTerminal:
		return FormatTerminal, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", errors.Errorf("invalid log format, %q", s)
	}
}

// ApplyLevel changes the minimum level of every logger at runtime.
func ApplyLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// Output opens f for appending behind a non-blocking writer.
func Output(f string) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(filepath.Clean(f)), 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create log directory, %q", f)
	}

	out, err := os.OpenFile(filepath.Clean(f), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) // nolint:gosec
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file, %q", f)
	}

	return diode.NewWriter(out, 1000, 0, nil), nil
}
