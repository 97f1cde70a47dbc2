package dev

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

// ChangeKind classifies a file change for reload purposes.
type ChangeKind int

const (
	// ChangePage is a change to page source; requires a full reload.
	ChangePage ChangeKind = iota

	// ChangeStyle is a stylesheet change; hot-swappable without a reload.
	ChangeStyle

	// ChangeAsset is any other watched file (images, templates, config).
	ChangeAsset
)

// Change is one debounced file-system event.
type Change struct {
	Path string
	Kind ChangeKind
}

// DefaultIgnore lists path segments the watcher always skips.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"dist",
	".idea",
	".vscode",
}

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	// Paths are the directories to watch, recursively.
	Paths []string

	// Ignore contains additional path segments or glob patterns to skip,
	// on top of DefaultIgnore.
	Ignore []string

	// Debounce is how long to coalesce bursts of events before reporting.
	// Defaults to 100ms.
	Debounce time.Duration

	// OnChange receives each debounced batch. Called from the watcher
	// goroutine.
	OnChange func([]Change)

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Watcher reports debounced file changes under a set of directories.
type Watcher struct {
	cfg WatcherConfig
	fw  *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]Change
	timer   *time.Timer

	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher and registers every directory under
// cfg.Paths. Start must be called to begin receiving events.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.OnChange == nil {
		return nil, errors.Newf(errors.CategoryConfig, "a watcher requires an OnChange callback")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 100 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Newf(errors.CategoryConfig, "failed to initialize the file watcher").Wrap(err)
	}

	w := &Watcher{
		cfg:     cfg,
		fw:      fw,
		pending: make(map[string]Change),
		done:    make(chan struct{}),
	}

	for _, root := range cfg.Paths {
		if err := w.addRecursive(root); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Start runs the event loop until Stop is called.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop shuts the watcher down. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fw.Close()
	})
}

func (w *Watcher) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			// Configured watch dirs may not exist yet in a fresh project.
			w.cfg.Logger.Debug("watch path does not exist, skipping", "path", root)
			return nil
		}
		return errors.Newf(errors.CategoryConfig, "cannot watch %s", root).Wrap(err)
	}
	if !info.IsDir() {
		return w.fw.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		return w.fw.Add(path)
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.cfg.Logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.ignored(event.Name) {
		return
	}

	// New directories need to be watched too; fsnotify is not recursive.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.cfg.Logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = Change{Path: event.Name, Kind: classifyChange(event.Name)}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.cfg.Debounce, w.flush)
	} else {
		w.timer.Reset(w.cfg.Debounce)
	}
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.timer = nil
		w.mu.Unlock()
		return
	}
	batch := make([]Change, 0, len(w.pending))
	for _, c := range w.pending {
		batch = append(batch, c)
	}
	w.pending = make(map[string]Change)
	w.timer = nil
	w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}
	w.cfg.OnChange(batch)
}

func (w *Watcher) ignored(path string) bool {
	for _, pattern := range DefaultIgnore {
		if pathHasSegment(path, pattern) {
			return true
		}
	}
	for _, pattern := range w.cfg.Ignore {
		if pathHasSegment(path, pattern) {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}

// pathHasSegment reports whether any path component equals segment.
func pathHasSegment(path, segment string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == segment {
			return true
		}
	}
	return false
}

// classifyChange maps a changed file to the cheapest reload strategy.
func classifyChange(path string) ChangeKind {
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, ".css"):
		return ChangeStyle
	case strings.Contains(base, ".page"):
		return ChangePage
	case strings.HasSuffix(base, ".go"):
		return ChangePage
	default:
		return ChangeAsset
	}
}
