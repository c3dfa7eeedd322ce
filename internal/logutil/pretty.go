// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logutil provides the colored console log handler shared by the
// CLI and the web server.
package logutil

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"

	"github.com/fatih/color"
)

// PrettyHandlerOptions configures a PrettyHandler.
type PrettyHandlerOptions struct {
	SlogOpts slog.HandlerOptions
}

// PrettyHandler is a slog.Handler that writes human-readable, colored lines
// instead of structured key=value output. Level filtering is delegated to the
// embedded handler so SlogOpts.Level behaves as usual.
type PrettyHandler struct {
	slog.Handler
	l     *log.Logger
	attrs []slog.Attr
}

// NewPrettyHandler returns a handler writing colored lines to out.
func NewPrettyHandler(out io.Writer, opts PrettyHandlerOptions) *PrettyHandler {
	return &PrettyHandler{
		Handler: slog.NewTextHandler(out, &opts.SlogOpts),
		l:       log.New(out, "", 0),
	}
}

// Handle formats one record as "[time] LEVEL: message {attrs}".
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	switch {
	case r.Level < slog.LevelInfo:
		level = color.MagentaString(level)
	case r.Level < slog.LevelWarn:
		level = color.BlueString(level)
	case r.Level < slog.LevelError:
		level = color.YellowString(level)
	default:
		level = color.RedString(level)
	}

	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})

	payload := ""
	if len(fields) > 0 {
		b, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		payload = color.WhiteString(string(b))
	}

	h.l.Println(r.Time.Format("[15:04:05.000]"), level, color.CyanString(r.Message), payload)
	return nil
}

// WithAttrs returns a copy of the handler carrying the extra attributes.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &PrettyHandler{Handler: h.Handler.WithAttrs(attrs), l: h.l, attrs: merged}
}

// WithGroup flattens groups; attribute keys keep their bare names.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return &PrettyHandler{Handler: h.Handler.WithGroup(name), l: h.l, attrs: h.attrs}
}

// NewLogger builds a slog.Logger at the given level. When pretty is true the
// colored console handler is used, otherwise plain text (suitable for log
// files).
func NewLogger(w io.Writer, level slog.Level, pretty bool) *slog.Logger {
	opts := slog.HandlerOptions{Level: level}
	if pretty {
		return slog.New(NewPrettyHandler(w, PrettyHandlerOptions{SlogOpts: opts}))
	}
	return slog.New(slog.NewTextHandler(w, &opts))
}
