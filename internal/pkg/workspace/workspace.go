// Package workspace orchestrates multi-project builds: it enumerates
// workspace members, builds their inter-project dependency graph,
// computes a topological build order, and drives each member's
// single-project pipeline in that order.
//
// Grounded on the original cforge's workspace.hpp/.cpp for the member
// model and on include_analyzer.cpp's DFS-with-recursion-stack shape for
// cycle detection (spec §4.10, reusing the same algorithm the include
// analyzer uses for a different graph).
package workspace

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/ozacod/cforge/internal/pkg/winpath"
	cferrors "github.com/ozacod/cforge/pkg/errors"
	"github.com/ozacod/cforge/pkg/manifest"
)

// Member is one enumerated and loaded workspace member.
type Member struct {
	Name    string
	Dir     string
	Project *manifest.Project
	Startup bool
}

// Graph is the workspace's inter-project dependency graph: edges run
// from a member to the members it depends on.
type Graph struct {
	Members map[string]Member
	Edges   map[string][]string
}

// Load enumerates members from ws, loading each member's own
// cforge.toml. An inline member table's settings are overridden by the
// member's own file when both exist, with a warning naming both sources
// (spec §3).
func Load(rootDir string, ws *manifest.Workspace, loadProject func(dir string) (*manifest.Project, error)) (*Graph, []string, error) {
	g := &Graph{Members: map[string]Member{}, Edges: map[string][]string{}}
	var warnings []string

	for _, m := range ws.Members {
		dir := m.Path
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(rootDir, dir)
		}

		proj, err := loadProject(dir)
		if err != nil {
			return nil, warnings, fmt.Errorf("loading workspace member %q: %w", dir, err)
		}

		name := proj.Name
		if name == "" {
			name = m.Name
		}
		if m.Name != "" && proj.Name != "" && m.Name != proj.Name {
			warnings = append(warnings, fmt.Sprintf(
				"workspace member %q: inline name %q overridden by %s's own name %q",
				dir, m.Name, manifest.ProjectManifestName, proj.Name))
		}

		startup := m.Startup || name == ws.Startup
		g.Members[name] = Member{Name: name, Dir: dir, Project: proj, Startup: startup}
	}

	for name, member := range g.Members {
		var edges []string
		for _, d := range member.Project.Dependencies {
			if _, ok := g.Members[d.Name]; ok {
				edges = append(edges, d.Name)
			}
		}
		sort.Strings(edges)
		g.Edges[name] = edges
	}

	return g, warnings, nil
}

// BuildOrder runs a depth-first topological sort over g, returning
// member names in dependency-first order. A back-edge is reported as
// *cferrors.CycleError naming the full cycle chain (spec §4.10, §8
// scenario S4).
func (g *Graph) BuildOrder() ([]string, error) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(g.Members))
	for name := range g.Members {
		color[name] = white
	}

	var order []string
	var stack []string

	names := make([]string, 0, len(g.Members))
	for name := range g.Members {
		names = append(names, name)
	}
	sort.Strings(names)

	var visit func(name string) error
	visit = func(name string) error {
		color[name] = gray
		stack = append(stack, name)

		for _, dep := range g.Edges[name] {
			switch color[dep] {
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			case gray:
				chain := cycleChain(stack, dep)
				return &cferrors.CycleError{Kind: "workspace", Chain: chain}
			}
		}

		stack = stack[:len(stack)-1]
		color[name] = black
		order = append(order, name)
		return nil
	}

	for _, name := range names {
		if color[name] == white {
			if err := visit(name); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}

// cycleChain renders the recursion stack from the point root first
// appears through the current top, closing the loop by repeating root.
func cycleChain(stack []string, root string) []string {
	start := 0
	for i, n := range stack {
		if n == root {
			start = i
			break
		}
	}
	chain := append([]string{}, stack[start:]...)
	chain = append(chain, root)
	return chain
}

// KeepGoingPlan computes which members to skip when a member fails and
// --keep-going is in force: a member is skipped only if its dependency
// closure includes the failed member.
func (g *Graph) KeepGoingPlan(order []string, failed string) (attempt, skip []string) {
	closureIncludes := func(name string) bool {
		visited := map[string]bool{}
		var dfs func(n string) bool
		dfs = func(n string) bool {
			if n == failed {
				return true
			}
			if visited[n] {
				return false
			}
			visited[n] = true
			for _, dep := range g.Edges[n] {
				if dfs(dep) {
					return true
				}
			}
			return false
		}
		return dfs(name)
	}

	for _, name := range order {
		if name == failed {
			continue
		}
		if closureIncludes(name) {
			skip = append(skip, name)
		} else {
			attempt = append(attempt, name)
		}
	}
	return attempt, skip
}

// Startup returns the member designated to run after a successful
// build, or false if none is marked.
func (g *Graph) Startup() (Member, bool) {
	for _, m := range g.Members {
		if m.Startup {
			return m, true
		}
	}
	return Member{}, false
}

// CMakeDefines returns the -D flags the orchestrator passes to a
// member's configure step so it can see its sibling dependencies' include
// and library directories (spec §4.10).
func CMakeDefines(member string, siblingIncludes, siblingLibs map[string]string) []string {
	var defs []string
	var includePaths, libPaths []string
	for dep, inc := range siblingIncludes {
		if inc != "" {
			includePaths = append(includePaths, inc)
		}
		defs = append(defs, fmt.Sprintf("-DCFORGE_DEP_%s=ON", dep))
		if inc != "" {
			defs = append(defs, fmt.Sprintf("-DCFORGE_%s_INCLUDE=%s", dep, inc))
		}
		if lib, ok := siblingLibs[dep]; ok && lib != "" {
			defs = append(defs, fmt.Sprintf("-DCFORGE_%s_LIB=%s", dep, lib))
			libPaths = append(libPaths, lib)
		}
	}
	if len(includePaths) > 0 {
		defs = append([]string{"-DCMAKE_INCLUDE_PATH=" + joinPaths(includePaths)}, defs...)
	}
	if len(libPaths) > 0 {
		defs = append([]string{"-DCMAKE_LIBRARY_PATH=" + joinPaths(libPaths)}, defs...)
	}
	return defs
}

// joinPaths joins sibling include/library paths the way CMake list
// arguments require: ';'-separated regardless of host OS, since this
// value flows into a -D define CMake itself parses as a list.
func joinPaths(paths []string) string {
	return winpath.JoinList(paths, true)
}
