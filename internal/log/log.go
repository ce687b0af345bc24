// Package log wires up crossput's ambient structured logging: a slog
// handler that fans out to any number of destinations (stderr text for a
// human, an optional file as JSON for later inspection) with an
// independently adjustable level per destination.
package log

import (
	"context"
	"io"
	"log/slog"
)

// MultiHandler fans out every Handle call to each of its children,
// continuing past a failing child so one broken sink never silences the
// rest.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMulti returns a handler that dispatches to every handler in hs.
func NewMulti(hs ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: out}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: out}
}

// LevelHandler wraps a handler with its own minimum level, independent of
// whatever level the logger's default handler was built with.
type LevelHandler struct {
	level   slog.Leveler
	handler slog.Handler
}

// NewLevel returns h gated at level.
func NewLevel(level slog.Leveler, h slog.Handler) *LevelHandler {
	return &LevelHandler{level: level, handler: h}
}

func (l *LevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= l.level.Level() && l.handler.Enabled(ctx, level)
}

func (l *LevelHandler) Handle(ctx context.Context, r slog.Record) error {
	return l.handler.Handle(ctx, r)
}

func (l *LevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewLevel(l.level, l.handler.WithAttrs(attrs))
}

func (l *LevelHandler) WithGroup(name string) slog.Handler {
	return NewLevel(l.level, l.handler.WithGroup(name))
}

// New builds the logger crossputctl and the backends use: text to out at
// consoleLevel, and (if file is non-nil) JSON to file at fileLevel.
func New(out io.Writer, consoleLevel slog.Level, file io.Writer, fileLevel slog.Level) *slog.Logger {
	handlers := []slog.Handler{
		NewLevel(consoleLevel, slog.NewTextHandler(out, &slog.HandlerOptions{Level: consoleLevel})),
	}
	if file != nil {
		handlers = append(handlers, NewLevel(fileLevel, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: fileLevel})))
	}
	return slog.New(NewMulti(handlers...))
}
