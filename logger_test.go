package cdg

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_DefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	if l.Enabled(nil, slog.LevelError) {
		t.Error("default logger is enabled, want silent")
	}
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	Logger().Warn("highlight budget exceeded", "syllable", 3)
	if !strings.Contains(buf.String(), "highlight budget exceeded") {
		t.Errorf("log output missing message: %q", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(nil, slog.LevelError) {
		t.Error("SetLogger(nil) did not restore silent default")
	}
}
