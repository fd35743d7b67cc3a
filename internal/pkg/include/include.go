// Package include parses #include directives under a project root,
// builds the file adjacency graph, and reports cycles.
//
// Grounded on the original cforge's include_analyzer.cpp for the
// resolution-order and exclusion-list rules, and on
// internal/pkg/workspace's DFS-with-recursion-stack cycle detector,
// which this package mirrors for a file graph instead of a project
// graph (spec §4.11).
package include

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	cferrors "github.com/ozacod/cforge/pkg/errors"
)

var defaultExtensions = map[string]bool{
	".h": true, ".hpp": true, ".hxx": true,
	".c": true, ".cc": true, ".cpp": true, ".cxx": true,
}

var defaultExcludes = map[string]bool{
	"build": true, "vendor": true, "deps": true,
	"third_party": true, "external": true, "node_modules": true,
}

var includeRe = regexp.MustCompile(`^\s*#\s*include\s*([<"])([^>"]+)[>"]`)

// Options configures a Scan.
type Options struct {
	Root        string
	Extensions  map[string]bool // nil uses defaultExtensions
	Excludes    map[string]bool // nil uses defaultExcludes
	IncludeDirs []string        // extra search paths, declared order
}

// Graph is the resolved include adjacency map: file -> files it includes.
type Graph struct {
	Root  string
	Edges map[string][]string
}

// Scan walks opts.Root, parses every recognized source file's #include
// directives, and resolves each to a path within the scanned set when
// possible (directives that resolve to nothing in-tree, e.g. system
// headers, are simply omitted as edges).
func Scan(opts Options) (*Graph, error) {
	exts := opts.Extensions
	if exts == nil {
		exts = defaultExtensions
	}
	excludes := opts.Excludes
	if excludes == nil {
		excludes = defaultExcludes
	}

	var files []string
	err := filepath.WalkDir(opts.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != opts.Root && excludes[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if exts[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	fileSet := make(map[string]bool, len(files))
	for _, f := range files {
		fileSet[f] = true
	}

	g := &Graph{Root: opts.Root, Edges: map[string][]string{}}
	for _, f := range files {
		includes, err := parseIncludes(f)
		if err != nil {
			return nil, err
		}
		dir := filepath.Dir(f)
		var resolved []string
		for _, inc := range includes {
			if target, ok := resolveInclude(inc, dir, opts.Root, opts.IncludeDirs, fileSet); ok {
				resolved = append(resolved, target)
			}
		}
		g.Edges[f] = resolved
	}
	return g, nil
}

func parseIncludes(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if m := includeRe.FindStringSubmatch(sc.Text()); m != nil {
			out = append(out, m[2])
		}
	}
	return out, sc.Err()
}

// resolveInclude tries, in order: directory of the including file,
// project root, then each configured include path (spec §4.11).
func resolveInclude(name, fileDir, root string, includeDirs []string, known map[string]bool) (string, bool) {
	candidates := append([]string{fileDir, root}, includeDirs...)
	for _, dir := range candidates {
		candidate := filepath.Join(dir, name)
		if known[candidate] {
			return candidate, true
		}
	}
	return "", false
}

// Chain is one detected cycle, ordered from the cycle root back to
// itself.
type Chain struct {
	Files []string
}

// FindCycles runs DFS with a recursion-stack set over g, returning one
// Chain per back-edge discovered (spec §8 property 7, scenario S5).
func (g *Graph) FindCycles() []Chain {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(g.Edges))
	for f := range g.Edges {
		color[f] = white
	}

	var chains []Chain
	var stack []string

	files := make([]string, 0, len(g.Edges))
	for f := range g.Edges {
		files = append(files, f)
	}
	sort.Strings(files)

	var visit func(f string)
	visit = func(f string) {
		color[f] = gray
		stack = append(stack, f)

		for _, dep := range g.Edges[f] {
			switch color[dep] {
			case white:
				visit(dep)
			case gray:
				chains = append(chains, Chain{Files: cycleChain(stack, dep)})
			}
		}

		stack = stack[:len(stack)-1]
		color[f] = black
	}

	for _, f := range files {
		if color[f] == white {
			visit(f)
		}
	}
	return chains
}

func cycleChain(stack []string, root string) []string {
	start := 0
	for i, f := range stack {
		if f == root {
			start = i
			break
		}
	}
	chain := append([]string{}, stack[start:]...)
	chain = append(chain, root)
	return chain
}

// Error builds a *cferrors.CycleError for the first chain found, for
// callers that want a single fatal error (e.g. build preflight) rather
// than the full chain list.
func (c Chain) Error() error {
	return &cferrors.CycleError{Kind: "include", Chain: c.Files}
}
