// Package watcher provides filesystem watching for working folders. It
// filters raw events down to changes on managed working files, debouncing
// save storms so one editor save produces one notification.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jamesainslie/slate/pkg/slate/logging"
	"github.com/jamesainslie/slate/pkg/slate/naming"
	"github.com/jamesainslie/slate/pkg/slate/paths"
)

// DefaultDebounce is how long a path must stay quiet before its change is
// reported. Editors often write a file several times per save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches working folders for changes to managed files.
type Watcher struct {
	grammar  *naming.Grammar
	resolver *paths.Resolver
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu     sync.Mutex
	paths  map[string]bool
	timers map[string]*time.Timer
	closed bool
}

// New creates a new Watcher using the given grammar and folder layout.
func New(grammar *naming.Grammar, resolver *paths.Resolver) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		grammar:  grammar,
		resolver: resolver,
		watcher:  fsw,
		debounce: DefaultDebounce,
		paths:    make(map[string]bool),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// SetDebounce overrides the quiet period before a change is reported.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Watch starts watching a path recursively. Reserved folders are skipped;
// the files appearing there are this tool's own copies. Symlinks are not
// followed to avoid loops.
func (w *Watcher) Watch(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	info, err := os.Lstat(absRoot)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil // Only watch directories
	}

	return filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.isReservedDir(path) && path != absRoot {
			return filepath.SkipDir
		}
		return w.addWatch(path)
	})
}

// isReservedDir reports whether a directory is itself a reserved folder.
func (w *Watcher) isReservedDir(path string) bool {
	// Classify works on the parent of a path, so probe with a child.
	return w.resolver.Classify(filepath.Join(path, "probe")) != paths.KindNone
}

// addWatch adds a single directory to the watch list.
func (w *Watcher) addWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.paths[path] {
		return nil
	}

	if err := w.watcher.Add(path); err != nil {
		logging.Get("watcher").Warn("failed to add watch", "path", path, "error", err)
		return err
	}

	w.paths[path] = true
	return nil
}

// Unwatch stops watching a path and all its subdirectories.
func (w *Watcher) Unwatch(root string) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	for path := range w.paths {
		if path == absRoot || isSubPath(path, absRoot) {
			_ = w.watcher.Remove(path)
			delete(w.paths, path)
		}
	}
}

// Run starts the event loop. It blocks until the context is cancelled.
// The onChange callback is called for each managed working file after its
// debounce window expires.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) {
	for {
		select {
		case <-ctx.Done():
			w.cancelTimers()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event, onChange)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get("watcher").Error("watcher error", "error", err)
		}
	}
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event, onChange func(path string)) {
	switch {
	case event.Op&fsnotify.Create != 0:
		w.handleCreate(event.Name)
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		// Rename is treated as a remove - the new name will trigger a create.
		w.handleRemove(event.Name)
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !w.isManagedWorkingFile(event.Name) {
		return
	}

	w.scheduleChange(event.Name, onChange)
}

// isManagedWorkingFile reports whether a path is a working file this tool
// cares about: a decodable basename outside the reserved folders.
func (w *Watcher) isManagedWorkingFile(path string) bool {
	if w.resolver.InReserved(path) {
		return false
	}
	if _, err := w.grammar.Decode(filepath.Base(path)); err != nil {
		return false
	}
	info, err := os.Lstat(path)
	return err == nil && info.Mode().IsRegular()
}

// scheduleChange arms (or re-arms) the debounce timer for a path.
func (w *Watcher) scheduleChange(path string, onChange func(path string)) {
	if onChange == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		onChange(path)
	})
}

// cancelTimers stops all pending debounce timers.
func (w *Watcher) cancelTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

// handleCreate handles file/directory creation events.
func (w *Watcher) handleCreate(path string) {
	info, err := os.Lstat(path)
	if err != nil {
		return // Might have been deleted already
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return
	}
	if !info.IsDir() || w.isReservedDir(path) {
		return
	}

	_ = w.addWatch(path)

	// Also walk any subdirectories that were created with it.
	_ = filepath.WalkDir(path, func(subpath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() && subpath != path {
			if w.isReservedDir(subpath) {
				return filepath.SkipDir
			}
			_ = w.addWatch(subpath)
		}
		return nil
	})
}

// handleRemove handles file/directory deletion events.
func (w *Watcher) handleRemove(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
		delete(w.timers, path)
	}

	if w.paths[path] {
		_ = w.watcher.Remove(path)
		delete(w.paths, path)
	}
	for childPath := range w.paths {
		if isSubPath(childPath, path) {
			_ = w.watcher.Remove(childPath)
			delete(w.paths, childPath)
		}
	}
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.paths = make(map[string]bool)
	return w.watcher.Close()
}

// isSubPath checks if path is under parent directory.
func isSubPath(path, parent string) bool {
	return len(path) > len(parent) && path[:len(parent)+1] == parent+string(filepath.Separator)
}
