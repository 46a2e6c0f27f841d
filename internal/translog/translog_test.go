package translog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew_CreatesSessionFileWithHeader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	name := filepath.Base(l.Path())
	if !strings.HasPrefix(name, "sermon_") || !strings.HasSuffix(name, ".txt") {
		t.Errorf("file name=%q, want sermon_*.txt", name)
	}

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.HasPrefix(string(data), "Log started at ") {
		t.Errorf("header=%q, want \"Log started at ...\"", string(data))
	}
}

func TestLogger_LineFormat(t *testing.T) {
	t.Parallel()

	l, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	}
	l.Log("In the beginning")

	data, _ := os.ReadFile(l.Path())
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1 entry", len(lines))
	}
	if lines[1] != "[09:26:53] In the beginning" {
		t.Errorf("entry=%q, want \"[09:26:53] In the beginning\"", lines[1])
	}
}

func TestLogger_SkipsEmptyLines(t *testing.T) {
	t.Parallel()

	l, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.Log("")

	data, _ := os.ReadFile(l.Path())
	if got := strings.Count(string(data), "\n"); got != 1 {
		t.Errorf("file has %d lines, want only the header", got)
	}
}

func TestLogger_CloseIsIdempotentAndDisablesWrites(t *testing.T) {
	t.Parallel()

	l, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	// Must not panic after close.
	l.Log("after close")
}
