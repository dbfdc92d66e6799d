package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := WithFile(New(&buf, "warn", "json"), "a.mztab")
	logger.Info("dropped")
	logger.Warn("kept", "errors", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry["msg"] != "kept" || entry["file"] != "a.mztab" || entry["errors"] != float64(3) {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug", "text").Debug("section", "name", "PSM")
	if !strings.Contains(buf.String(), "name=PSM") {
		t.Errorf("text output %q lacks attribute", buf.String())
	}
}
