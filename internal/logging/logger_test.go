package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestConsoleHandlerFormatsRecord(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("item stored",
		String(FieldComponent, "ingest"),
		Int64(FieldMessageID, 42),
		String("subject", "Nico Robin"),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO ingest: item stored") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "message_id=42") {
		t.Fatalf("expected message_id attr in %q", line)
	}
	if !strings.Contains(line, `subject="Nico Robin"`) {
		t.Fatalf("expected quoted subject attr in %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info record should have been filtered: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestConsoleHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl)).WithGroup("feed")

	logger.Info("batch done", Int("accepted", 3))

	if !strings.Contains(buf.String(), "feed.accepted=3") {
		t.Fatalf("expected group-prefixed key, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNoopHandlerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("noop logger should report disabled")
	}
	// Must not panic.
	logger.Error("ignored", Error(nil), Duration("d", time.Second))
}
