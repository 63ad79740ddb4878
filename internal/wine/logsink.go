package wine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/winevat/winevat/internal/logging"
	"github.com/winevat/winevat/internal/version"
)

// Header carries the run metadata written at the top of a log file.
type Header struct {
	Binary    string
	Args      []string
	Env       map[string]string
	Timestamp time.Time
}

// LogSink is an append-only text destination scoped to one run. The sink is
// exclusively owned by the run that created it; write failures are logged
// and never interrupt the run.
type LogSink struct {
	mu     sync.Mutex
	f      *os.File
	path   string
	logger logging.Logger
	closed bool
}

// NewLogSink creates the per-run log file and writes the header block.
func NewLogSink(dir string, runID uint64, header Header, logger logging.Logger) (*LogSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("%s-%d.log", header.Timestamp.Format("2006-01-02T15-04-05"), runID)
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	s := &LogSink{f: f, path: path, logger: logger}
	s.writeString(header.format())
	return s, nil
}

// Path returns the log file location.
func (s *LogSink) Path() string { return s.path }

// Write appends one output chunk verbatim. Best-effort: errors are logged,
// never returned.
func (s *LogSink) Write(text string) {
	s.writeString(text)
}

// Close closes the underlying file. Safe to call more than once.
func (s *LogSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if err := s.f.Close(); err != nil {
		s.logger.Warn("Failed to close log file", "path", s.path, "error", err)
	}
}

func (s *LogSink) writeString(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, err := s.f.WriteString(text); err != nil {
		s.logger.Warn("Failed to write log file", "path", s.path, "error", err)
	}
}

// format renders the header block: run metadata, then a separator, then the
// raw output follows.
func (h Header) format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "winevat version: %s\n", version.Get().Version)
	fmt.Fprintf(&sb, "date: %s\n", h.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&sb, "binary: %s\n", h.Binary)
	fmt.Fprintf(&sb, "arguments: %s\n", strings.Join(h.Args, " "))

	keys := make([]string, 0, len(h.Env))
	for k := range h.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sb.WriteString("environment:\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %s=%s\n", k, h.Env[k])
	}
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	return sb.String()
}
