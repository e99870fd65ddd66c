package analysis

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a set of input files and re-triggers the analysis when
// any of them changes.
type Watcher struct {
	files    map[string]bool
	dirs     []string
	debounce time.Duration
	onChange func()
	logger   *slog.Logger
}

// NewWatcher creates a watcher for the given input files. Events are
// debounced so a single editor save triggers one re-run.
func NewWatcher(files []string, debounce time.Duration, onChange func(), logger *slog.Logger) *Watcher {
	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}

	seen := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}

	return w
}

// Watch starts watching and blocks until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the parent directories so replace-by-rename saves are seen.
	for _, dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !w.isRelevantEvent(event) {
				continue
			}

			w.logger.Debug("input change detected", "file", event.Name, "op", event.Op.String())

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// isRelevantEvent checks whether an event touches one of the watched
// input files.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		abs = event.Name
	}
	return w.files[abs]
}
