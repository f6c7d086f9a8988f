// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package sg

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerDefaultIsSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	// Must not panic and must report disabled at every level.
	l.Debug("dropped")
	l.Error("dropped")
	if l.Enabled(nil, slog.LevelError) {
		t.Error("default logger should be disabled at all levels")
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(nil)

	Logger().Info("sync complete", slog.Int("frames", 3))
	if out := buf.String(); !strings.Contains(out, "sync complete") || !strings.Contains(out, "frames=3") {
		t.Errorf("log output = %q", out)
	}
}

func TestSetLoggerNilRestoresSilence(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	SetLogger(nil)

	Logger().Error("dropped")
	if buf.Len() != 0 {
		t.Errorf("nil logger still wrote: %q", buf.String())
	}
}
