package analyzer

import (
	"log"
	"path/filepath"

	"github.com/mi-examples/cs-helper/internal/tsparse"
)

// Options configure an extraction engine.
type Options struct {
	// Function is the parameter-declaration callee name.
	// Defaults to getScriptParams.
	Function string
	// CommentWindow bounds the fallback comment search, in lines.
	CommentWindow int
	// Extensions is the specifier probe order. Defaults to
	// DefaultExtensions.
	Extensions []string
	// CacheCapacity bounds the memoized entry results.
	CacheCapacity int
}

// Engine drives extraction: it resolves the module graph, constructs a
// shared checker over the discovered file set, scans every file, and
// memoizes the aggregate per entry path.
//
// The engine is single-threaded and fully synchronous. Hosts embedding it
// concurrently must serialize Extract and the invalidation operations
// themselves; there is no internal locking discipline beyond what the
// cache provides.
type Engine struct {
	opts  Options
	cache *ResultCache
}

// NewEngine creates an engine with its own result cache.
func NewEngine(opts Options) (*Engine, error) {
	cache, err := NewResultCache(opts.CacheCapacity)
	if err != nil {
		return nil, err
	}
	return &Engine{opts: opts, cache: cache}, nil
}

// Extract returns the declaration calls reachable from entryPath, cached
// by resolved absolute path. Errors never escape: the worst case is an
// empty result, logged as a warning.
func (e *Engine) Extract(entryPath string) *ExtractionResult {
	key := resolveKey(entryPath)
	return e.cache.GetOrCompute(key, func() *ExtractionResult {
		return e.compute(key)
	})
}

// Invalidate drops the cached result for one entry path.
func (e *Engine) Invalidate(entryPath string) {
	e.cache.Invalidate(resolveKey(entryPath))
}

// InvalidateAll drops every cached result.
func (e *Engine) InvalidateAll() {
	e.cache.InvalidateAll()
}

// Close releases the engine's cache.
func (e *Engine) Close() {
	e.cache.Close()
}

// ResolveGraph exposes module graph resolution for callers that need the
// file set or the import graph (the deps command, the watcher). The caller
// owns the returned graph and must close it.
func (e *Engine) ResolveGraph(entryPath string) (*ModuleGraph, error) {
	return ResolveModuleGraph(resolveKey(entryPath), e.opts.Extensions)
}

func resolveKey(entryPath string) string {
	abs, err := filepath.Abs(entryPath)
	if err != nil {
		return filepath.Clean(entryPath)
	}
	return abs
}

func (e *Engine) compute(entry string) (result *ExtractionResult) {
	result = &ExtractionResult{Entry: entry}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: extraction failed for %s: %v\n", entry, r)
			result = &ExtractionResult{Entry: entry}
		}
	}()

	mg, err := ResolveModuleGraph(entry, e.opts.Extensions)
	if err != nil {
		log.Printf("Warning: failed to resolve module graph for %s: %v\n", entry, err)
		return result
	}
	defer mg.Close()

	// Best-effort: a checker construction failure degrades every scan to
	// the textual fallback path.
	checker, err := NewProjectChecker(liveUnits(mg.Units))
	if err != nil {
		log.Printf("Warning: %v; continuing without type resolution\n", err)
		checker = NoopChecker{}
	}

	scanner := NewScanner(checker, ScanOptions{
		Function:      e.opts.Function,
		CommentWindow: e.opts.CommentWindow,
	})

	for i, unit := range mg.Units {
		if unit == nil {
			log.Printf("Warning: skipping unreadable or unparsable file %s\n", mg.Files()[i])
			continue
		}
		result.Calls = append(result.Calls, scanUnitSafely(scanner, unit)...)
	}

	return result
}

func liveUnits(units []*tsparse.SourceUnit) []*tsparse.SourceUnit {
	live := make([]*tsparse.SourceUnit, 0, len(units))
	for _, unit := range units {
		if unit != nil {
			live = append(live, unit)
		}
	}
	return live
}

// scanUnitSafely contains a per-file scan failure so sibling files still
// contribute to the aggregate.
func scanUnitSafely(scanner *Scanner, unit *tsparse.SourceUnit) (calls []DeclarationCall) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: failed to scan %s: %v\n", unit.Path, r)
			calls = nil
		}
	}()
	return scanner.ScanUnit(unit)
}
