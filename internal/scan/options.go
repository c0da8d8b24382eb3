// Package scan supplies the file system side of an analysis: the ordered,
// bounded list of candidate paths under a root, the text content of a single
// path, and a watcher that reports settled changes below a root.
package scan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxFileBytes is the largest file the Reader will return
const DefaultMaxFileBytes = 1024 * 1024

var (
	// ErrTooLarge is returned for files above the configured size cap
	ErrTooLarge = errors.New("file too large")
	// ErrBinary is returned for content that is not UTF-8 text
	ErrBinary = errors.New("binary content")
)

// skipDirs are never descended into
var skipDirs = map[string]bool{
	"node_modules": true, ".git": true, "vendor": true,
	"dist": true, "build": true, "target": true,
	"__pycache__": true, ".next": true, ".nuxt": true,
	"coverage": true, ".cache": true,
}

// SkipDir reports whether a directory with this base name is left out of
// collection and watching. Hidden directories are skipped too.
func SkipDir(name string) bool {
	return skipDirs[name] || (strings.HasPrefix(name, ".") && name != "." && name != "..")
}

// Options configures collection and reading
type Options struct {
	MaxFileBytes     int64    `json:"max_file_bytes" yaml:"max_file_bytes"`
	RespectGitignore bool     `json:"respect_gitignore" yaml:"respect_gitignore"`
	Exclude          []string `json:"exclude,omitempty" yaml:"exclude,omitempty"` // doublestar globs, relative to the root
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		MaxFileBytes:     DefaultMaxFileBytes,
		RespectGitignore: true,
	}
}

// Validate checks the exclude globs
func (o Options) Validate() error {
	if o.MaxFileBytes < 0 {
		return fmt.Errorf("max file bytes must not be negative: %d", o.MaxFileBytes)
	}
	for _, pattern := range o.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return nil
}

// excluded reports whether the slash-separated relative path matches an exclude glob
func (o Options) excluded(rel string) bool {
	for _, pattern := range o.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
