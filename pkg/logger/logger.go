// Package logger builds the *slog.Logger values used across sparrow.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level  slog.Level
	format Format
	source bool
	w      io.Writer
}

// New builds a logger from opts. Without options it writes Info and above as
// text to os.Stderr, keeping stdout free for chat output.
func New(opts ...Option) *slog.Logger {
	c := &config{
		level: slog.LevelInfo,
		w:     os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     c.level,
		AddSource: c.source,
	}

	switch c.format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(c.w, handlerOpts))

	case FormatPretty:
		return slog.New(charmlog.NewWithOptions(c.w, charmlog.Options{
			ReportTimestamp: true,
			ReportCaller:    c.source,
			Level:           charmLevel(c.level),
		}))

	default:
		return slog.New(slog.NewTextHandler(c.w, handlerOpts))
	}
}

// Nop returns a logger that drops every record.
func Nop() *slog.Logger {
	return slog.New(discard{})
}

func charmLevel(l slog.Level) charmlog.Level {
	switch {
	case l <= slog.LevelDebug:
		return charmlog.DebugLevel
	case l <= slog.LevelInfo:
		return charmlog.InfoLevel
	case l <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}

type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }
