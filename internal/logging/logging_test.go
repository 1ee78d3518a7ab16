package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_Disabled(t *testing.T) {
	var console bytes.Buffer
	logger, closer, err := New(Options{Enabled: false, Console: &console})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer closer.Close()

	logger.Info("hello")
	if console.Len() != 0 {
		t.Errorf("Disabled logger wrote %q", console.String())
	}
}

func TestNew_FileAndConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	if err := os.WriteFile(path, []byte("stale content\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var console bytes.Buffer
	logger, closer, err := New(Options{Enabled: true, Path: path, Console: &console})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	logger.Warn("cleanup failed", "file", "clip.mp4")
	if err := closer.Close(); err != nil {
		t.Fatalf("Failed to close log file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "stale content") {
		t.Error("Expected log file to be truncated on open")
	}
	if !strings.Contains(string(data), "cleanup failed") {
		t.Errorf("Log file missing record: %q", data)
	}
	if !strings.Contains(console.String(), "level=WARN") {
		t.Errorf("Console missing record: %q", console.String())
	}
}

func TestNew_BadPath(t *testing.T) {
	_, _, err := New(Options{Enabled: true, Path: filepath.Join(t.TempDir(), "missing", "log.txt")})
	if err == nil {
		t.Error("Expected error for unwritable log path")
	}
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = Discard()
}
