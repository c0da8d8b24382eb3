package scan

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"time"
	"unicode/utf8"
)

// Stats tracks reader activity
type Stats struct {
	FilesRead    int       `json:"files_read"`
	FilesSkipped int       `json:"files_skipped"`
	BytesRead    int64     `json:"bytes_read"`
	LastRead     time.Time `json:"last_read"`
	LastError    string    `json:"last_error,omitempty"`
}

// Reader returns the text content of files. It is safe for concurrent use.
type Reader struct {
	maxBytes int64

	mu    sync.Mutex
	stats Stats
}

// NewReader creates a reader with the given size cap. A cap below 1 uses
// DefaultMaxFileBytes.
func NewReader(maxBytes int64) *Reader {
	if maxBytes < 1 {
		maxBytes = DefaultMaxFileBytes
	}
	return &Reader{maxBytes: maxBytes}
}

// ReadContent reads path as text. Oversized files fail with ErrTooLarge and
// files containing NUL bytes or invalid UTF-8 fail with ErrBinary.
func (r *Reader) ReadContent(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		r.recordError(path, err)
		return "", err
	}
	if info.Size() > r.maxBytes {
		err := fmt.Errorf("%s: %w (%d > %d bytes)", path, ErrTooLarge, info.Size(), r.maxBytes)
		r.recordError(path, err)
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		r.recordError(path, err)
		return "", err
	}
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		err := fmt.Errorf("%s: %w", path, ErrBinary)
		r.recordError(path, err)
		return "", err
	}

	r.mu.Lock()
	r.stats.FilesRead++
	r.stats.BytesRead += int64(len(data))
	r.stats.LastRead = time.Now()
	r.mu.Unlock()

	return string(data), nil
}

// Stats returns a snapshot of reader statistics
func (r *Reader) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// recordError records a skipped file in stats
func (r *Reader) recordError(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.FilesSkipped++
	r.stats.LastError = fmt.Sprintf("%s: %v", path, err)
}
