package watcher

import (
	"context"
	"log"
	"path/filepath"
	"sync"

	"github.com/mi-examples/cs-helper/internal/analyzer"
)

// Extractor is the engine surface the invalidation watcher needs. The
// analyzer engine satisfies it.
type Extractor interface {
	Extract(entryPath string) *analyzer.ExtractionResult
	Invalidate(entryPath string)
	ResolveGraph(entryPath string) (*analyzer.ModuleGraph, error)
}

// InvalidationWatcher watches the source tree under rootDir and keeps the
// extraction cache fresh: when a file changes, every entry whose module
// graph contains that file is invalidated and re-extracted.
type InvalidationWatcher struct {
	extractor Extractor
	rootDir   string
	entries   []string
	onRefresh func(result *analyzer.ExtractionResult)

	fw FileWatcher

	mu       sync.Mutex
	fileSets map[string]map[string]bool // entry -> files in its module graph
}

// NewInvalidationWatcher creates a watcher over rootDir for the given entry
// scripts. ignorePatterns are the discovery globs excluded from watching;
// onRefresh is called with each freshly recomputed result and may be nil.
func NewInvalidationWatcher(extractor Extractor, rootDir string, entries []string, extensions []string, ignorePatterns []string, onRefresh func(*analyzer.ExtractionResult)) (*InvalidationWatcher, error) {
	fw, err := NewFileWatcher([]string{rootDir}, extensions, ignorePatterns)
	if err != nil {
		return nil, err
	}

	w := &InvalidationWatcher{
		extractor: extractor,
		rootDir:   rootDir,
		entries:   entries,
		onRefresh: onRefresh,
		fw:        fw,
		fileSets:  make(map[string]map[string]bool),
	}
	w.rebuildFileSets()
	return w, nil
}

// Start begins watching. Blocks only for watcher setup; events are handled
// on the watcher's goroutine.
func (w *InvalidationWatcher) Start(ctx context.Context) error {
	return w.fw.Start(ctx, w.handleChanges)
}

// Stop stops the underlying file watcher.
func (w *InvalidationWatcher) Stop() error {
	return w.fw.Stop()
}

// rebuildFileSets re-resolves each entry's module graph into a file set.
// Entries that fail to resolve get an empty set and are refreshed on any
// unattributed change.
func (w *InvalidationWatcher) rebuildFileSets() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.fileSets = make(map[string]map[string]bool, len(w.entries))
	for _, entry := range w.entries {
		set := make(map[string]bool)
		mg, err := w.extractor.ResolveGraph(entry)
		if err != nil {
			log.Printf("Warning: failed to resolve module graph for %s: %v", entry, err)
		} else {
			for _, file := range mg.Files() {
				set[file] = true
			}
			mg.Close()
		}
		w.fileSets[entry] = set
	}
}

// handleChanges receives a debounced batch of changed files and refreshes
// every affected entry. A change to a file in no known graph may still
// alter import resolution (a new index.ts, say), so it refreshes all
// entries.
func (w *InvalidationWatcher) handleChanges(files []string) {
	affected := make(map[string]bool)

	w.mu.Lock()
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			abs = filepath.Clean(file)
		}

		known := false
		for entry, set := range w.fileSets {
			if set[abs] {
				affected[entry] = true
				known = true
			}
		}
		if !known {
			for _, entry := range w.entries {
				affected[entry] = true
			}
		}
	}
	w.mu.Unlock()

	for entry := range affected {
		w.extractor.Invalidate(entry)
	}

	// Graph shapes may have changed; re-resolve before re-extracting.
	w.rebuildFileSets()

	for entry := range affected {
		result := w.extractor.Extract(entry)
		if w.onRefresh != nil {
			w.onRefresh(result)
		}
	}
}
