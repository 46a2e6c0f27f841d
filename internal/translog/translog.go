// Package translog writes the English transcript of a session to disk.
//
// Each session gets its own timestamped file so a sermon can be summarised or
// archived afterwards. Whichever direction the pipeline runs in, the logged
// line is always the English side: the source text for EN->AR sessions, the
// translated text for AR->EN sessions — that selection is the caller's job,
// this package only persists lines.
//
// Write failures are logged and swallowed: losing a log line must never
// disturb the live pipeline.
package translog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Sink accepts transcript lines. Implemented by [Logger]; the interface
// exists so the inference worker can be tested with an in-memory double.
type Sink interface {
	Log(line string)
}

// Logger appends timestamped transcript lines to a session file.
// Safe for concurrent use.
type Logger struct {
	mu   sync.Mutex
	f    *os.File
	path string
	now  func() time.Time
}

// Compile-time assertion that Logger implements Sink.
var _ Sink = (*Logger)(nil)

// New creates the session log file under dir, named
// sermon_YYYYMMDD_HHMMSS.txt, and writes a header line. dir is created if it
// does not exist.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("translog: create log dir %q: %w", dir, err)
	}

	now := time.Now()
	path := filepath.Join(dir, "sermon_"+now.Format("20060102_150405")+".txt")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("translog: create log file %q: %w", path, err)
	}

	l := &Logger{f: f, path: path, now: time.Now}
	if _, err := fmt.Fprintf(f, "Log started at %s\n", now.Format("2006-01-02 15:04:05")); err != nil {
		f.Close()
		return nil, fmt.Errorf("translog: write header: %w", err)
	}
	return l, nil
}

// Path returns the full path of the session log file.
func (l *Logger) Path() string { return l.path }

// Log appends one line with an HH:MM:SS timestamp. Empty lines are skipped.
// Errors are logged, not returned.
func (l *Logger) Log(line string) {
	if line == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return
	}
	if _, err := fmt.Fprintf(l.f, "[%s] %s\n", l.now().Format("15:04:05"), line); err != nil {
		slog.Warn("transcript log write failed", "path", l.path, "err", err)
		return
	}
	if err := l.f.Sync(); err != nil {
		slog.Debug("transcript log sync failed", "path", l.path, "err", err)
	}
}

// Close flushes and closes the session file. Safe to call more than once.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
