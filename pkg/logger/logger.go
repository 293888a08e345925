// Package logger provides opinionated slog construction for the nexus services
// and CLI.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level  slog.Leveler
	pretty bool
	json   bool
	source bool
	writer io.Writer
}

// New builds a *slog.Logger from the given options. The default is a text
// handler at Info level writing to os.Stdout.
func New(opts ...Option) *slog.Logger {
	c := &config{
		level:  slog.LevelInfo,
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	w := c.writer
	if w == nil {
		w = os.Stdout
	}

	switch {
	case c.pretty:
		h := charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			ReportCaller:    c.source,
			Level:           charmLevel(c.level.Level()),
		})
		return slog.New(&leveledHandler{Handler: h, level: c.level})
	case c.json:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     c.level,
			AddSource: c.source,
		}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     c.level,
			AddSource: c.source,
		}))
	}
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
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

// leveledHandler lets a slog.LevelVar drive the charm handler, which otherwise
// fixes its level at construction time.
type leveledHandler struct {
	slog.Handler
	level slog.Leveler
}

func (h *leveledHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *leveledHandler) Handle(ctx context.Context, r slog.Record) error {
	if ch, ok := h.Handler.(*charmlog.Logger); ok {
		ch.SetLevel(charmLevel(h.level.Level()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *leveledHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &leveledHandler{Handler: h.Handler.WithAttrs(attrs), level: h.level}
}

func (h *leveledHandler) WithGroup(name string) slog.Handler {
	return &leveledHandler{Handler: h.Handler.WithGroup(name), level: h.level}
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
