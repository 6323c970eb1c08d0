package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// defaultDebounce is the quiet period after the last event before the
// callback fires.
const defaultDebounce = 500 * time.Millisecond

// ignoreRule pairs an ignore pattern with its compiled glob. Patterns match
// slash-separated paths relative to a watched root, same as entry
// discovery.
type ignoreRule struct {
	pattern string
	glob    glob.Glob
}

// fileWatcher implements FileWatcher. It watches the given roots
// recursively, skipping ignored directories entirely, and delivers
// debounced, deduplicated batches of changed source files.
type fileWatcher struct {
	watcher      *fsnotify.Watcher
	roots        []string
	extensions   map[string]bool
	ignore       []ignoreRule
	debounceTime time.Duration
	callback     func(files []string)

	ctx    context.Context
	cancel context.CancelFunc

	pendingMu sync.Mutex
	pending   map[string]bool

	timerMu       sync.Mutex
	debounceTimer *time.Timer

	stopOnce sync.Once
	doneCh   chan struct{}
}

// NewFileWatcher creates a watcher over the given root directories.
// extensions lists the file extensions to monitor (e.g. ".ts", ".js");
// ignorePatterns are discovery-style globs whose matches never produce
// events and whose directories are never watched.
func NewFileWatcher(roots []string, extensions []string, ignorePatterns []string) (FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	extMap := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extMap[ext] = true
	}

	fw := &fileWatcher{
		watcher:      watcher,
		roots:        roots,
		extensions:   extMap,
		debounceTime: defaultDebounce,
		pending:      make(map[string]bool),
		doneCh:       make(chan struct{}),
	}

	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			watcher.Close()
			return nil, err
		}
		fw.ignore = append(fw.ignore, ignoreRule{pattern: pattern, glob: g})
	}

	for _, root := range roots {
		if err := fw.watchTree(root); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	return fw, nil
}

// Start begins watching for file changes.
func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	fw.callback = callback
	fw.ctx, fw.cancel = context.WithCancel(ctx)

	go fw.run()
	return nil
}

// Stop stops the file watcher.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()

			// Wait for the run goroutine (only if Start() was called).
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}

		err = fw.watcher.Close()
	})
	return err
}

// run is the event loop.
func (fw *fileWatcher) run() {
	defer close(fw.doneCh)

	flushCh := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event, flushCh)

		case <-flushCh:
			fw.flushPending()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

func (fw *fileWatcher) handleEvent(event fsnotify.Event, flushCh chan struct{}) {
	// Newly created directories join the watch set unless ignored.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !fw.isIgnored(event.Name, true) {
				if err := fw.watchTree(event.Name); err != nil {
					log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
				}
			}
			return
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
		return
	}
	if !fw.extensions[filepath.Ext(event.Name)] {
		return
	}
	if fw.isIgnored(event.Name, false) {
		return
	}

	fw.pendingMu.Lock()
	fw.pending[event.Name] = true
	fw.pendingMu.Unlock()

	fw.resetDebounceTimer(flushCh)
}

// flushPending fires the callback with the accumulated batch.
func (fw *fileWatcher) flushPending() {
	fw.pendingMu.Lock()
	if len(fw.pending) == 0 {
		fw.pendingMu.Unlock()
		return
	}
	files := make([]string, 0, len(fw.pending))
	for file := range fw.pending {
		files = append(files, file)
	}
	fw.pending = make(map[string]bool)
	fw.pendingMu.Unlock()

	if fw.callback != nil {
		fw.callback(files)
	}
}

// resetDebounceTimer restarts the quiet-period timer, draining a timer
// that already fired.
func (fw *fileWatcher) resetDebounceTimer(flushCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		if !fw.debounceTimer.Stop() {
			select {
			case <-fw.debounceTimer.C:
			default:
			}
		}
	}

	fw.debounceTimer = time.AfterFunc(fw.debounceTime, func() {
		select {
		case flushCh <- struct{}{}:
		default:
		}
	})
}

func (fw *fileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
		fw.debounceTimer = nil
	}
}

// watchTree adds every non-ignored directory under rootPath to the watch
// set. Ignored subtrees are pruned, so their churn never reaches the event
// loop at all.
func (fw *fileWatcher) watchTree(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}

		if !info.IsDir() {
			return nil
		}
		if path != rootPath && fw.isIgnored(path, true) {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
			return nil // Continue anyway
		}
		return nil
	})
}

// isIgnored reports whether a path matches an ignore pattern, relative to
// whichever root contains it. Directories also try the "<path>/**" form so
// a pattern like "node_modules/**" prunes the directory itself.
func (fw *fileWatcher) isIgnored(path string, isDir bool) bool {
	for _, root := range fw.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)

		for _, rule := range fw.ignore {
			if rule.glob.Match(rel) {
				return true
			}
			if isDir && rule.glob.Match(rel+"/**") {
				return true
			}
		}
	}
	return false
}
