package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "snoo.log")
	logger, closer, err := New("info", path)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.WithField("feed", "r/golang").Info("page published")
	logger.Debug("hidden at info level")
	if err := closer.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "page published") || !strings.Contains(out, "feed=r/golang") {
		t.Fatalf("unexpected log output: %q", out)
	}
	if strings.Contains(out, "hidden at info level") {
		t.Fatalf("debug line must be filtered: %q", out)
	}
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	if _, _, err := New("chatty", ""); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("expected a logger for nil input")
	}
}
