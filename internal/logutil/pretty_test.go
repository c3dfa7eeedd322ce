// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logutil

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, PrettyHandlerOptions{})

	if h.Handler == nil {
		t.Error("expected embedded handler to be set")
	}
	if h.l == nil {
		t.Error("expected internal logger to be set")
	}
}

func TestPrettyHandlerLevels(t *testing.T) {
	tests := []struct {
		name string
		log  func(l *slog.Logger)
		want string
	}{
		{
			name: "debug",
			log:  func(l *slog.Logger) { l.Debug("resolving compound") },
			want: "DEBUG:",
		},
		{
			name: "info",
			log:  func(l *slog.Logger) { l.Info("profile assembled") },
			want: "INFO:",
		},
		{
			name: "warn",
			log:  func(l *slog.Logger) { l.Warn("activity lookup failed") },
			want: "WARN:",
		},
		{
			name: "error",
			log:  func(l *slog.Logger) { l.Error("registry unreachable") },
			want: "ERROR:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			opts := PrettyHandlerOptions{SlogOpts: slog.HandlerOptions{Level: slog.LevelDebug}}
			logger := slog.New(NewPrettyHandler(&buf, opts))

			tt.log(logger)

			out := buf.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q missing level marker %q", out, tt.want)
			}
		})
	}
}

func TestPrettyHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, PrettyHandlerOptions{}))

	logger.Info("compound resolved", "cid", 2244, "query", "aspirin")

	out := buf.String()
	for _, want := range []string{"compound resolved", `"cid":2244`, `"query":"aspirin"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestPrettyHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, PrettyHandlerOptions{}))

	logger.With("stage", "bioassay").Info("lookup complete")

	out := buf.String()
	if !strings.Contains(out, `"stage":"bioassay"`) {
		t.Errorf("output %q missing bound attribute", out)
	}
}

func TestPrettyHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	opts := PrettyHandlerOptions{SlogOpts: slog.HandlerOptions{Level: slog.LevelWarn}}
	logger := slog.New(NewPrettyHandler(&buf, opts))

	logger.Info("should be suppressed")

	if buf.Len() != 0 {
		t.Errorf("expected no output below warn level, got %q", buf.String())
	}
}

func TestNewLoggerPlain(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, false)

	logger.Info("written to file", "query", "imatinib")

	out := buf.String()
	if !strings.Contains(out, "query=imatinib") {
		t.Errorf("plain handler output %q missing key=value attribute", out)
	}
}
