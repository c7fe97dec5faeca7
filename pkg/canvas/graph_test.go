package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewGraph verifies basic graph creation.
func TestNewGraph(t *testing.T) {
	g := NewGraph()
	assert.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.NotNil(t, g.edges)
	assert.NotNil(t, g.conditionalEdges)
	assert.Empty(t, g.entryPoint)
}

// TestGraph_AddNode tests successful node addition.
func TestGraph_AddNode(t *testing.T) {
	g := NewGraph().
		AddNode("a", noopNode).
		AddNode("b", noopNode)

	assert.Len(t, g.nodes, 2)
	assert.Contains(t, g.nodes, "a")
	assert.Contains(t, g.nodes, "b")
}

// TestGraph_AddNode_Chaining tests fluent API chaining.
func TestGraph_AddNode_Chaining(t *testing.T) {
	g := NewGraph()
	result := g.AddNode("a", noopNode)
	assert.Same(t, g, result)
}

// TestGraph_AddNode_EmptyID_Panics tests that empty node ID panics.
func TestGraph_AddNode_EmptyID_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "canvas: node ID cannot be empty", func() {
		NewGraph().AddNode("", noopNode)
	})
}

// TestGraph_AddNode_ReservedID_Panics tests that reserved IDs panic.
func TestGraph_AddNode_ReservedID_Panics(t *testing.T) {
	testCases := []struct {
		name string
		id   string
	}{
		{"END uppercase", "END"},
		{"end lowercase", "end"},
		{"End mixed case", "End"},
		{"__end__ literal", "__end__"},
		{"__END__ uppercase", "__END__"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.PanicsWithValue(t, "canvas: node ID cannot be reserved word 'END'", func() {
				NewGraph().AddNode(tc.id, noopNode)
			})
		})
	}
}

// TestGraph_AddNode_WhitespaceID_Panics tests that IDs with whitespace panic.
func TestGraph_AddNode_WhitespaceID_Panics(t *testing.T) {
	for _, id := range []string{"node a", "node\ta", "node\na", " node", "node "} {
		assert.PanicsWithValue(t, "canvas: node ID cannot contain whitespace", func() {
			NewGraph().AddNode(id, noopNode)
		})
	}
}

// TestGraph_AddNode_NilFunc_Panics tests that a nil node function panics.
func TestGraph_AddNode_NilFunc_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "canvas: node function cannot be nil", func() {
		NewGraph().AddNode("a", nil)
	})
}

// TestGraph_AddNode_Duplicate_Panics tests duplicate detection.
func TestGraph_AddNode_Duplicate_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "canvas: duplicate node ID: a", func() {
		NewGraph().AddNode("a", noopNode).AddNode("a", noopNode)
	})
}

// TestGraph_AddConditionalEdge_NilRouter_Panics tests router validation.
func TestGraph_AddConditionalEdge_NilRouter_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "canvas: router function cannot be nil", func() {
		NewGraph().AddNode("a", noopNode).AddConditionalEdge("a", nil)
	})
}

// TestGraph_SetEntry_Chaining verifies the full builder chain returns
// the same graph.
func TestGraph_SetEntry_Chaining(t *testing.T) {
	g := NewGraph()
	result := g.
		AddNode("a", noopNode).
		AddEdge("a", END).
		SetEntry("a")
	assert.Same(t, g, result)
	assert.Equal(t, "a", g.entryPoint)
}
