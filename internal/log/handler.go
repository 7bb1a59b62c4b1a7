package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// cliHandler renders log records the way the pymake CLI presents
// diagnostics: terse single-line WARN/ERROR output, with each record's
// structured attributes appended only when the handler runs at DEBUG level.
type cliHandler struct {
	w     io.Writer
	level slog.Level
}

// NewCLIHandler returns a slog.Handler tuned for command-line diagnostics.
// Below level, records are dropped; when level is LevelDebug or lower,
// every record also carries its structured attributes for troubleshooting.
func NewCLIHandler(w io.Writer, level slog.Level) slog.Handler {
	return &cliHandler{w: w, level: level}
}

func (h *cliHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *cliHandler) Handle(_ context.Context, r slog.Record) error {
	line := fmt.Sprintf("%s: %s", levelTag(r.Level), r.Message)
	if h.level <= slog.LevelDebug {
		r.Attrs(func(a slog.Attr) bool {
			line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
			return true
		})
	}
	_, err := fmt.Fprintln(h.w, line)
	return err
}

func (h *cliHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// The handler keeps no state: attributes added through With() are
	// dropped, and Handle renders only each record's own attributes.
	return h
}

func (h *cliHandler) WithGroup(name string) slog.Handler {
	return h
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "error"
	case l >= slog.LevelWarn:
		return "warn"
	case l >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
