package canvas

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompile_Linear verifies a valid linear graph compiles.
func TestCompile_Linear(t *testing.T) {
	cg, err := linearGraph()
	require.NoError(t, err)
	assert.Equal(t, "a", cg.EntryPoint())
}

// TestCompile_NoEntryPoint verifies compilation fails without SetEntry.
func TestCompile_NoEntryPoint(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", noopNode).
		AddEdge("a", END).
		Compile()

	assert.ErrorIs(t, err, ErrNoEntryPoint)
}

// TestCompile_EntryNotFound verifies an unknown entry point fails.
func TestCompile_EntryNotFound(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", noopNode).
		AddEdge("a", END).
		SetEntry("missing").
		Compile()

	assert.ErrorIs(t, err, ErrEntryNotFound)
}

// TestCompile_EdgeTargetNotFound verifies an edge to an unknown node fails.
func TestCompile_EdgeTargetNotFound(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", noopNode).
		AddEdge("a", "ghost").
		SetEntry("a").
		Compile()

	assert.ErrorIs(t, err, ErrNodeNotFound)
}

// TestCompile_NoPathToEnd verifies a graph that can never terminate fails.
func TestCompile_NoPathToEnd(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", noopNode).
		AddNode("b", noopNode).
		AddEdge("a", "b").
		AddEdge("b", "a").
		SetEntry("a").
		Compile()

	assert.ErrorIs(t, err, ErrNoPathToEnd)
}

// TestCompile_MultipleErrors verifies joined errors surface together.
func TestCompile_MultipleErrors(t *testing.T) {
	_, err := NewGraph().
		AddNode("a", noopNode).
		AddEdge("a", "ghost").
		Compile()

	assert.ErrorIs(t, err, ErrNoEntryPoint)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

// TestCompile_ConditionalAssumedToReachEnd verifies a router node
// counts as a potential path to END.
func TestCompile_ConditionalAssumedToReachEnd(t *testing.T) {
	cg, err := NewGraph().
		AddNode("a", noopNode).
		AddConditionalEdge("a", routeTo(END)).
		SetEntry("a").
		Compile()

	require.NoError(t, err)
	assert.True(t, cg.IsConditional("a"))
}

// TestCompiledGraph_Introspection verifies the read-only topology
// accessors.
func TestCompiledGraph_Introspection(t *testing.T) {
	cg, err := NewGraph().
		AddNode("a", noopNode).
		AddNode("b", noopNode).
		AddNode("c", noopNode).
		AddConditionalEdge("a", routeTo("b")).
		AddEdge("b", "c").
		AddEdge("c", END).
		SetEntry("a").
		Compile()
	require.NoError(t, err)

	ids := cg.NodeIDs()
	sort.Strings(ids)
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	assert.True(t, cg.HasNode("b"))
	assert.False(t, cg.HasNode("ghost"))
	assert.Equal(t, []string{"c"}, cg.Successors("b"))
	assert.Equal(t, []string{"b"}, cg.Predecessors("c"))
	assert.True(t, cg.IsConditional("a"))
	assert.False(t, cg.IsConditional("b"))
}
