package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", InfoLevel},
		{"", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if DebugLevel.String() != "debug" || ErrorLevel.String() != "error" {
		t.Error("Level.String() mismatch")
	}
	if Level(42).String() != "unknown" {
		t.Error("unknown level should stringify to unknown")
	}
}

func TestNewWithFileOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	l := New(&Config{Level: InfoLevel, Format: "json", Output: path})
	l.Info("hello", "key", "value")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file missing message, got %q", string(data))
	}
}

func TestSetLevelFiltersDebug(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "level.log")

	l := New(&Config{Level: InfoLevel, Format: "text", Output: path})
	l.Debug("invisible")
	l.SetLevel(DebugLevel)
	l.Debug("visible")
	_ = l.Close()

	data, _ := os.ReadFile(path)
	out := string(data)
	if strings.Contains(out, "invisible") {
		t.Error("debug message logged below threshold")
	}
	if !strings.Contains(out, "visible") {
		t.Error("debug message missing after SetLevel")
	}
}

func TestWithDoesNotOwnCloser(t *testing.T) {
	l := New(&Config{Level: InfoLevel, Format: "text", Output: "stdout"})
	derived := l.With("component", "test")
	if err := derived.Close(); err != nil {
		t.Errorf("derived Close() error = %v", err)
	}
}
