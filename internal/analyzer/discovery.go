package analyzer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and its compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// EntryDiscovery finds candidate entry scripts under a root directory with
// glob patterns and ignore rules.
type EntryDiscovery struct {
	rootDir        string
	entryPatterns  []compiledPattern
	ignorePatterns []compiledPattern
}

// NewEntryDiscovery compiles the given glob patterns. Patterns match
// slash-separated paths relative to rootDir.
func NewEntryDiscovery(rootDir string, entryPatterns, ignorePatterns []string) (*EntryDiscovery, error) {
	d := &EntryDiscovery{rootDir: rootDir}

	for _, pattern := range entryPatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		d.entryPatterns = append(d.entryPatterns, compiledPattern{pattern: pattern, glob: g})
	}

	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		d.ignorePatterns = append(d.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	return d, nil
}

// DiscoverEntries walks the root directory and returns matching entry
// files, sorted by the walk order of filepath.Walk.
func (d *EntryDiscovery) DiscoverEntries() ([]string, error) {
	entries := []string{}

	err := filepath.Walk(d.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.shouldIgnore(relPath) {
			return nil
		}
		if matchesAnyPattern(relPath, d.entryPatterns) {
			entries = append(entries, path)
		}
		return nil
	})

	return entries, err
}

// shouldIgnore checks both the path itself and its directory-prefix form,
// so "node_modules" matches the pattern "node_modules/**".
func (d *EntryDiscovery) shouldIgnore(relPath string) bool {
	if matchesAnyPattern(relPath, d.ignorePatterns) {
		return true
	}
	return matchesAnyPattern(relPath+"/**", d.ignorePatterns)
}

func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Root-level files have no slash, so "**/*.ts" style patterns miss
	// them; retry with the prefix stripped.
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if g, err := glob.Compile(simplified, '/'); err == nil && g.Match(path) {
					return true
				}
			}
		}
	}

	return false
}
