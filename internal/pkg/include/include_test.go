package include

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHeader(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFindCyclesDetectsThreeFileCycle(t *testing.T) {
	// Spec §8 scenario S5: x.hpp -> y.hpp -> z.hpp -> x.hpp.
	dir := t.TempDir()
	x := writeHeader(t, dir, "x.hpp", `#include "y.hpp"`)
	y := writeHeader(t, dir, "y.hpp", `#include "z.hpp"`)
	z := writeHeader(t, dir, "z.hpp", `#include "x.hpp"`)

	g, err := Scan(Options{Root: dir})
	require.NoError(t, err)

	chains := g.FindCycles()
	require.Len(t, chains, 1)
	assert.Equal(t, []string{x, y, z, x}, chains[0].Files)
}

func TestAcyclicGraphReportsNoCycles(t *testing.T) {
	dir := t.TempDir()
	writeHeader(t, dir, "a.hpp", `#include "b.hpp"`)
	writeHeader(t, dir, "b.hpp", `// no includes`)

	g, err := Scan(Options{Root: dir})
	require.NoError(t, err)

	assert.Empty(t, g.FindCycles())
}

func TestExcludedDirectoriesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor"), 0o755))
	writeHeader(t, filepath.Join(dir, "vendor"), "skip.hpp", `#include "a.hpp"`)
	writeHeader(t, dir, "a.hpp", `// nothing`)

	g, err := Scan(Options{Root: dir})
	require.NoError(t, err)

	for f := range g.Edges {
		assert.NotContains(t, f, "vendor")
	}
}
