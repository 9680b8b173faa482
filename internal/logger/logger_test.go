package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewDebugModeWritesToStdout(t *testing.T) {
	log := New("debug", Options{})
	if log == nil {
		t.Fatal("expected logger instance")
	}
	log.Sugar().Debugw("debug_event", "key", "value")
}

func TestNewReleaseModeCreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	log := New("release", Options{Dir: dir, Filename: "service_test.log"})
	if log == nil {
		t.Fatal("expected logger instance")
	}

	log.Sugar().Infow("release_event", "key", "value")
	if err := log.Sync(); err != nil {
		t.Logf("sync warning: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "service_test.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "release_event") {
		t.Fatalf("log file missing entry, got: %s", content)
	}
}

func TestResolveLogFilePathDefaults(t *testing.T) {
	dir := t.TempDir()
	path, err := resolveLogFilePath(Options{Dir: dir})
	if err != nil {
		t.Fatalf("resolve path: %v", err)
	}
	if filepath.Base(path) != defaultLogFilename {
		t.Fatalf("expected default filename, got %s", path)
	}
}

func TestNormalizePositiveInt(t *testing.T) {
	if got := normalizePositiveInt(0, 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
	if got := normalizePositiveInt(30, 7); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
}
