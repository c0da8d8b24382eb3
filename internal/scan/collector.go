package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/denormal/go-gitignore"

	"github.com/saeedalam/stacksignal/internal/logging"
)

// Collector lists candidate files under a root
type Collector struct {
	opts   Options
	logger *slog.Logger
}

// NewCollector creates a collector. Invalid exclude globs are rejected.
func NewCollector(opts Options, logger *slog.Logger) (*Collector, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Collector{opts: opts, logger: logger}, nil
}

// Paths walks root in lexical order and returns at most max file paths, each
// joined to root. A max below 1 means no limit. Unreadable entries below the
// root are logged and skipped; an unreadable root is an error.
func (c *Collector) Paths(ctx context.Context, root string, max int) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	ignore := c.loadGitignore(root)

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			c.logger.Warn("Skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if SkipDir(d.Name()) || c.ignored(ignore, rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if c.ignored(ignore, rel, false) {
			return nil
		}

		paths = append(paths, path)
		if max > 0 && len(paths) >= max {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	c.logger.Debug("Collected paths", "root", root, "count", len(paths))
	return paths, nil
}

func (c *Collector) loadGitignore(root string) gitignore.GitIgnore {
	if !c.opts.RespectGitignore {
		return nil
	}
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	matcher, err := gitignore.NewFromFile(path)
	if err != nil {
		c.logger.Warn("Ignoring unreadable .gitignore", "path", path, "error", err)
		return nil
	}
	return matcher
}

func (c *Collector) ignored(matcher gitignore.GitIgnore, rel string, isDir bool) bool {
	if c.opts.excluded(filepath.ToSlash(rel)) {
		return true
	}
	if matcher == nil {
		return false
	}
	match := matcher.Relative(rel, isDir)
	return match != nil && match.Ignore()
}
