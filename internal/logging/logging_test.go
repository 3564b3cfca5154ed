package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, Text).With("session", "s1").WithGroup("weave")
	log.Info("class woven", "class", "a/B", "patches", 3)
	log.Debug("hidden")

	out := buf.String()
	for _, want := range []string{"[info] class woven", " | session=s1 weave.class=a/B weave.patches=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q lacks %q", out, want)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level")
	}
	if n := strings.Count(out, "\n"); n != 1 {
		t.Errorf("lines = %d, want 1", n)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelDebug, JSON).Debug("x", "k", 1)
	if !strings.Contains(buf.String(), `"k":1`) {
		t.Errorf("json output = %q", buf.String())
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"off", Silent},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := LevelFromString(tt.in); got != tt.want {
			t.Errorf("LevelFromString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := LevelFromVerbosity(0, false); got != slog.LevelWarn {
		t.Errorf("verbosity 0 = %v, want warn", got)
	}
	if got := LevelFromVerbosity(3, false); got != slog.LevelDebug {
		t.Errorf("verbosity 3 = %v, want debug", got)
	}
	if got := LevelFromVerbosity(3, true); got != Silent {
		t.Errorf("quiet = %v, want silent", got)
	}
}
