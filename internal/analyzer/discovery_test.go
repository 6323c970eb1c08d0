package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for entry discovery:
// - Match nested files against ** glob patterns
// - Match root-level files despite the **/ prefix
// - Ignore patterns exclude whole directory trees
// - Extension-specific ignores (.d.ts) beat the broader entry pattern
// - Invalid glob patterns fail construction

func TestEntryDiscovery_GlobsAndIgnores(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rootScript := writeSource(t, dir, "root.ts", "export {};\n")
	nested := writeSource(t, dir, "scripts/job.ts", "export {};\n")
	writeSource(t, dir, "node_modules/pkg/index.ts", "export {};\n")
	writeSource(t, dir, "scripts/types.d.ts", "export {};\n")
	writeSource(t, dir, "README.md", "# nope\n")

	discovery, err := NewEntryDiscovery(dir,
		[]string{"**/*.ts"},
		[]string{"node_modules/**", "**/*.d.ts"},
	)
	require.NoError(t, err)

	entries, err := discovery.DiscoverEntries()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{rootScript, nested}, entries)
}

func TestEntryDiscovery_MultiplePatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ts := writeSource(t, dir, "a.ts", "export {};\n")
	js := writeSource(t, dir, "b.js", "module.exports = {};\n")
	writeSource(t, dir, "c.py", "pass\n")

	discovery, err := NewEntryDiscovery(dir, []string{"**/*.ts", "**/*.js"}, nil)
	require.NoError(t, err)

	entries, err := discovery.DiscoverEntries()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ts, js}, entries)
}

func TestEntryDiscovery_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewEntryDiscovery(t.TempDir(), []string{"[unclosed"}, nil)
	require.Error(t, err)
}
