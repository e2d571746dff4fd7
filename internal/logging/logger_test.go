package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPrintfAppendsTimestampedLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := New(dir)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Printf("api: GET %s -> %d\n", "/admin/", 200)
	logger.Printf("second")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	logger.Printf("after close is dropped")

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "[") || !strings.HasSuffix(lines[0], "api: GET /admin/ -> 200") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Printf("ignored %d", 1)
	if err := logger.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
