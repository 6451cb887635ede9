// Package watcher turns filesystem notifications below a working directory
// into debounced batches of changed paths.
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"symindex/internal/engine/traversal"
	"symindex/internal/shared/observability"
	"symindex/internal/shared/util"

	"github.com/fsnotify/fsnotify"
)

type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	debounce   time.Duration
	classifier *traversal.Classifier
	ignored    []string
	onChange   func([]string)
	callbackMu sync.Mutex
	log        *slog.Logger

	pending   map[string]time.Time
	pendingMu sync.Mutex
	timer     *time.Timer
}

// NewWatcher applies the same exclusion rules as the index walk. A nil
// classifier falls back to the built-in rules.
func NewWatcher(debounce time.Duration, classifier *traversal.Classifier, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}
	if classifier == nil {
		classifier = traversal.DefaultClassifier()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher:  fsw,
		debounce:   debounce,
		classifier: classifier,
		onChange:   onChange,
		log:        slog.Default(),
		pending:    make(map[string]time.Time),
	}, nil
}

func (w *Watcher) SetLogger(logger *slog.Logger) {
	if logger != nil {
		w.log = logger
	}
}

// Ignore drops events below the given directories, such as an index storage
// folder that lives inside the watched tree.
func (w *Watcher) Ignore(dirs ...string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		w.ignored = append(w.ignored, dir)
	}
}

func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		if err := w.watchRecursive(path); err != nil {
			return err
		}
	}

	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && w.shouldExcludeDir(path) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}

		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()

			if event.Op&fsnotify.Create == fsnotify.Create {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if !w.shouldExcludeDir(event.Name) {
						if err := w.watchRecursive(event.Name); err != nil {
							w.log.Warn("failed to watch new directory", "path", event.Name, "error", err)
						} else {
							w.scheduleChange(event.Name)
							w.enqueueExistingFiles(event.Name)
						}
					}
					continue
				}
			}

			if w.shouldExcludeFile(event.Name) {
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Remove == fsnotify.Remove ||
				event.Op&fsnotify.Rename == fsnotify.Rename {
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = time.Now()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		w.flushChanges()
	})
}

// flushChanges hands the accumulated paths to the callback in sorted order.
func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := util.SortedStringKeys(w.pending)
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	if len(paths) > 0 {
		w.callbackMu.Lock()
		defer w.callbackMu.Unlock()
		w.onChange(paths)
	}
}

func (w *Watcher) isIgnored(path string) bool {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	for _, dir := range w.ignored {
		if util.HasPathPrefix(path, dir) {
			return true
		}
	}
	return false
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	return w.isIgnored(path) || w.classifier.ExcludeDir(filepath.Base(path))
}

func (w *Watcher) shouldExcludeFile(path string) bool {
	return w.isIgnored(path) || w.classifier.ExcludeFile(filepath.Base(path))
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil {
			return nil
		}
		if info.IsDir() {
			if path != root && w.shouldExcludeDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.shouldExcludeFile(path) {
			return nil
		}
		w.scheduleChange(path)
		return nil
	})
}
