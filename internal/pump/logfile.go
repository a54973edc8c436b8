package pump

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const logTimestampFormat = "2006-01-02 15:04:05.000"

// LogWriter persists every output line of one run, prefixed with a timestamp
// and the channel it arrived on. Both reader goroutines share one writer, so
// appends are serialised with a mutex.
type LogWriter struct {
	mu sync.Mutex
	w  io.WriteCloser
}

// OpenLog creates the run's log file, creating parent directories as needed.
func OpenLog(path string) (*LogWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &LogWriter{w: f}, nil
}

// NewLogWriter wraps an arbitrary writer, used by tests.
func NewLogWriter(w io.WriteCloser) *LogWriter {
	return &LogWriter{w: w}
}

// Append writes one line in the persisted log format:
// [YYYY-MM-DD HH:MM:SS.mmm] [CHANNEL] line
func (lw *LogWriter) Append(channel, line string) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err := fmt.Fprintf(lw.w, "[%s] [%s] %s\n", time.Now().Format(logTimestampFormat), channel, line)
	return err
}

// Close closes the underlying file.
func (lw *LogWriter) Close() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Close()
}
