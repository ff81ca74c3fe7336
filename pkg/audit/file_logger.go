package audit

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"
)

// FileLogger appends events as JSON lines to a file.
type FileLogger struct {
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
}

// NewFileLogger opens (or creates) the audit log file for appending.
func NewFileLogger(path string) (*FileLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &FileLogger{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

// Log appends one event as a JSON line.
func (l *FileLogger) Log(ctx context.Context, event *Event) error {
	data, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode audit event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	if err := l.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return l.writer.Flush()
}

// Close flushes and closes the underlying file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writer.Flush(); err != nil {
		return err
	}
	return l.file.Close()
}
