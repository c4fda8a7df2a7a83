package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunReturnsStoreError(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("BACKROOMS_OTEL_ENDPOINT", "")
	t.Setenv("BACKROOMS_STORE", "sqlite")
	t.Setenv("BACKROOMS_SQLITE_PATH", filepath.Join(dir, "missing", "game.db"))

	err := run()
	if err == nil || !strings.Contains(err.Error(), "opening store") {
		t.Fatalf("Expected a store error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "backrooms.log")); err != nil {
		t.Errorf("Expected the log file to be opened before the failure, got %v", err)
	}
}
