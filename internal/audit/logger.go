// Package audit writes one JSON line per job processing attempt.
package audit

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const OutcomeSuccess = "success"

type Entry struct {
	Timestamp     time.Time     `json:"timestamp"`
	CorrelationID string        `json:"correlation_id"`
	Outcome       string        `json:"outcome"`
	Model         string        `json:"model,omitempty"`
	JobID         string        `json:"job_id,omitempty"`
	Slug          string        `json:"slug,omitempty"`
	DetailsChars  int           `json:"details_chars"`
	ResponseChars int           `json:"response_chars"`
	Duration      time.Duration `json:"duration_ns"`
	LatencyMs     int64         `json:"latency_ms"`
}

type Logger struct {
	writer io.Writer
	mu     sync.Mutex
	now    func() time.Time
}

func NewLogger(w io.Writer) *Logger {
	return &Logger{writer: w, now: time.Now}
}

// NewFileLogger appends to path, creating it and its directory as needed.
// Entries are mirrored to stdout. The returned closer releases the file.
func NewFileLogger(path string) (*Logger, io.Closer, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, nil, err
	}

	cleanPath := filepath.Clean(path)
	f, err := os.OpenFile(cleanPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path is from application config, not user input
	if err != nil {
		return nil, nil, err
	}
	return NewLogger(io.MultiWriter(os.Stdout, f)), f, nil
}

func (l *Logger) Log(entry Entry) {
	entry.Timestamp = l.now()
	entry.LatencyMs = entry.Duration.Milliseconds()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := json.NewEncoder(l.writer).Encode(entry); err != nil {
		slog.Error("failed to write audit entry", "error", err)
	}
}
