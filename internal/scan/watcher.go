package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/saeedalam/stacksignal/internal/logging"
)

// DefaultDebounce is how long the tree must stay quiet before a change is reported
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc receives the paths that changed since the last report
type ChangeFunc func(ctx context.Context, changed []string)

// WatcherStats tracks watcher activity
type WatcherStats struct {
	EventsSeen  int       `json:"events_seen"`
	Reports     int       `json:"reports"`
	LastReport  time.Time `json:"last_report"`
	ErrorCount  int       `json:"error_count"`
	LastError   string    `json:"last_error,omitempty"`
	WatchedDirs int       `json:"watched_dirs"`
}

// Watcher reports settled changes below a root. Skipped directories (see
// SkipDir) are not watched. Directories created later are added.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange ChangeFunc
	logger   *slog.Logger

	fsw      *fsnotify.Watcher
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	running  bool
	stats    WatcherStats
}

// NewWatcher creates a watcher. A debounce below 1 uses DefaultDebounce.
func NewWatcher(root string, debounce time.Duration, onChange ChangeFunc, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins watching. It returns once the tree is registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.fsw = fsw
	w.stats = WatcherStats{}
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}

	w.mu.Lock()
	w.running = true
	w.stopChan = make(chan struct{})
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop(ctx)

	w.logger.Info("Watcher started", "root", w.root, "debounce", w.debounce)
	return nil
}

// Stop halts the watcher and waits for a pending report to finish
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopChan)
	w.mu.Unlock()

	w.wg.Wait()
	w.fsw.Close()
	w.logger.Info("Watcher stopped", "root", w.root)
}

// IsRunning returns whether the watcher is active
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Stats returns watcher statistics
func (w *Watcher) Stats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if w.skipped(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.recordError("watch "+event.Name, err)
					}
				}
			}

			w.mu.Lock()
			w.stats.EventsSeen++
			w.mu.Unlock()

			pending[event.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.recordError("watcher", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)

			w.mu.Lock()
			w.stats.Reports++
			w.stats.LastReport = time.Now()
			w.mu.Unlock()

			w.logger.Debug("Change settled", "root", w.root, "paths", len(changed))
			if w.onChange != nil {
				w.onChange(ctx, changed)
			}
		}
	}
}

// skipped reports whether any directory between root and path is skipped
func (w *Watcher) skipped(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range splitPath(rel) {
		if SkipDir(part) {
			return true
		}
	}
	return false
}

func splitPath(rel string) []string {
	var parts []string
	dir := filepath.Dir(rel)
	for dir != "." && dir != string(filepath.Separator) && dir != "" {
		parts = append(parts, filepath.Base(dir))
		dir = filepath.Dir(dir)
	}
	return parts
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
		w.mu.Lock()
		w.stats.WatchedDirs++
		w.mu.Unlock()
		return nil
	})
}

// recordError records an error in stats
func (w *Watcher) recordError(source string, err error) {
	w.logger.Warn("Watcher error", "source", source, "error", err)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.ErrorCount++
	w.stats.LastError = fmt.Sprintf("%s: %v", source, err)
}
