package accesslog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/circleci/etag-demo/o11y"
)

// DefaultPath is where the access log is written unless configured otherwise.
const DefaultPath = "log/access.log"

// ErrClosed is returned for writes after Close. Lines arriving during shutdown are traced
// as a warning.
var ErrClosed = o11y.NewWarning("access log is closed")

// Sink is an append-only access log file. It is safe for concurrent use and never
// interleaves lines.
type Sink struct {
	path string

	mu     sync.Mutex
	file   *os.File
	lines  int64
	bytes  int64
	closed bool
}

// Open opens the log at path for appending, creating it and its directory as needed.
func Open(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create access log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open access log: %w", err)
	}
	return &Sink{path: path, file: f}, nil
}

func (s *Sink) Path() string {
	return s.path
}

// WriteLine appends line followed by a newline with a single write.
func (s *Sink) WriteLine(line string) error {
	b := make([]byte, 0, len(line)+1)
	b = append(b, line...)
	b = append(b, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	n, err := s.file.Write(b)
	s.bytes += int64(n)
	if err != nil {
		return fmt.Errorf("write access log: %w", err)
	}
	s.lines++
	return nil
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}

func (s *Sink) MetricName() string {
	return "access-log"
}

// Gauges reports the lines and bytes written since the sink was opened.
func (s *Sink) Gauges(context.Context) map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]float64{
		"lines": float64(s.lines),
		"bytes": float64(s.bytes),
	}
}

func (s *Sink) HealthChecks() (name string, ready, live func(ctx context.Context) error) {
	return "access-log", s.ready, nil
}

func (s *Sink) ready(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}
