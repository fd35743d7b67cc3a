package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cferrors "github.com/ozacod/cforge/pkg/errors"
	"github.com/ozacod/cforge/pkg/manifest"
)

func memberGraph(edges map[string][]string) *Graph {
	g := &Graph{Members: map[string]Member{}, Edges: edges}
	for name := range edges {
		g.Members[name] = Member{Name: name, Project: &manifest.Project{Name: name}}
	}
	return g
}

func TestTopologicalOrderForDAG(t *testing.T) {
	g := memberGraph(map[string][]string{
		"app": {"lib"},
		"lib": {},
	})

	order, err := g.BuildOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"lib", "app"}, order)
}

func TestWorkspaceCycleDetected(t *testing.T) {
	// Spec §8 scenario S4: a -> b -> c -> a.
	g := memberGraph(map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	})

	_, err := g.BuildOrder()
	require.Error(t, err)

	var cycleErr *cferrors.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, "workspace", cycleErr.Kind)
	assert.Equal(t, []string{"a", "b", "c", "a"}, cycleErr.Chain)
}

func TestKeepGoingPlanSkipsDependents(t *testing.T) {
	g := memberGraph(map[string][]string{
		"app": {"lib"},
		"lib": {},
		"tool": {},
	})

	order := []string{"lib", "app", "tool"}
	attempt, skip := g.KeepGoingPlan(order, "lib")

	assert.ElementsMatch(t, []string{"tool"}, attempt)
	assert.ElementsMatch(t, []string{"app"}, skip)
}
