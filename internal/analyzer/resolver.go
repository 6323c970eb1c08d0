package analyzer

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mi-examples/cs-helper/internal/tsparse"
)

// DefaultExtensions is the ordered list of source extensions probed when a
// relative specifier omits one. The same list is probed again as
// index.<ext> inside a directory.
var DefaultExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// ModuleGraph is the transitive local-reference closure of an entry file:
// the parsed units in first-visit order plus the recorded import graph.
type ModuleGraph struct {
	Entry string
	Units []*tsparse.SourceUnit

	files []string
	deps  graph.Graph[string, string]
}

// ResolveModuleGraph discovers every file reachable from entryPath through
// relative import/require/dynamic-import specifiers. Specifiers that do not
// resolve to an existing file are dropped silently; package-ecosystem
// imports are not analyzable source. Traversal is depth-first with a
// visited set, so cyclic import graphs terminate with each file visited
// exactly once.
func ResolveModuleGraph(entryPath string, extensions []string) (*ModuleGraph, error) {
	entry, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(entry); err != nil {
		return nil, err
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	mg := &ModuleGraph{
		Entry: entry,
		deps:  graph.New(graph.StringHash, graph.Directed()),
	}

	visited := make(map[string]bool)
	mg.visit(entry, extensions, visited)

	return mg, nil
}

func (mg *ModuleGraph) visit(path string, extensions []string, visited map[string]bool) {
	if visited[path] {
		return
	}
	visited[path] = true

	unit, err := tsparse.ParseFile(path)
	if err != nil {
		log.Printf("Warning: failed to parse %s: %v\n", path, err)
		// Keep the path so the scanner reports the file as skipped.
		unit = nil
	}

	mg.files = append(mg.files, path)
	mg.Units = append(mg.Units, unit)
	mg.deps.AddVertex(path)

	if unit == nil {
		return
	}

	dir := filepath.Dir(path)
	for _, spec := range localSpecifiers(unit) {
		resolved, ok := resolveSpecifier(dir, spec, extensions)
		if !ok {
			continue
		}

		if err := mg.deps.AddVertex(resolved); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			continue
		}
		if err := mg.deps.AddEdge(path, resolved); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			log.Printf("Warning: failed to record edge %s -> %s: %v\n", path, resolved, err)
		}

		mg.visit(resolved, extensions, visited)
	}
}

// localSpecifiers returns the relative-path import specifiers of a unit in
// source order: static imports, re-exports, require calls, and dynamic
// imports.
func localSpecifiers(unit *tsparse.SourceUnit) []string {
	var specs []string

	appendSpec := func(node *sitter.Node) {
		if node == nil || node.Kind() != "string" {
			return
		}
		spec := unit.StringValue(node)
		if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == ".." {
			specs = append(specs, spec)
		}
	}

	tsparse.WalkTree(unit.Root(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement", "export_statement":
			appendSpec(n.ChildByFieldName("source"))
		case "call_expression":
			callee := n.ChildByFieldName("function")
			if callee == nil {
				return true
			}
			isRequire := callee.Kind() == "identifier" && unit.Text(callee) == "require"
			isDynamicImport := callee.Kind() == "import"
			if !isRequire && !isDynamicImport {
				return true
			}
			if args := n.ChildByFieldName("arguments"); args != nil && args.NamedChildCount() > 0 {
				appendSpec(args.NamedChild(0))
			}
		}
		return true
	})

	return specs
}

// resolveSpecifier maps a relative specifier to an existing file: the exact
// path first, then each probe extension, then index.<ext> inside a
// directory. Returns false when nothing exists.
func resolveSpecifier(fromDir, spec string, extensions []string) (string, bool) {
	base := filepath.Clean(filepath.Join(fromDir, spec))

	if info, err := os.Stat(base); err == nil && !info.IsDir() {
		return base, true
	}

	for _, ext := range extensions {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}

	for _, ext := range extensions {
		candidate := filepath.Join(base, "index"+ext)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}

	return "", false
}

// Files returns the discovered absolute paths, entry first, in first-visit
// order.
func (mg *ModuleGraph) Files() []string {
	return mg.files
}

// Dependencies returns each file's resolved local references, keyed by
// absolute path, with every reference list sorted.
func (mg *ModuleGraph) Dependencies() map[string][]string {
	result := make(map[string][]string, len(mg.files))

	adjacency, err := mg.deps.AdjacencyMap()
	if err != nil {
		return result
	}

	for from, edges := range adjacency {
		targets := make([]string, 0, len(edges))
		for to := range edges {
			targets = append(targets, to)
		}
		sort.Strings(targets)
		result[from] = targets
	}
	return result
}

// Close releases every parsed unit.
func (mg *ModuleGraph) Close() {
	for _, unit := range mg.Units {
		if unit != nil {
			unit.Close()
		}
	}
}
