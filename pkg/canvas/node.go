package canvas

import "github.com/randalmurphal/canvasflow/pkg/canvas/state"

// END is the terminal node identifier.
// Use this as an edge target to indicate the graph should terminate.
const END = "__end__"

// NodeFunc is the signature for all node functions.
// Nodes receive the execution context and the current workflow state,
// and return a state patch describing what they changed.
//
// The state parameter is passed by value: nodes must express every
// change through the returned patch, never by mutating shared data.
// Side effects are limited to the declared collaborators reachable
// through the Context (model client, searcher, store), which keeps a
// retried node safe: it re-reads the same input state and produces an
// equivalent patch.
//
// Example:
//
//	func flag(ctx canvas.Context, s state.WorkflowState) (state.Patch, error) {
//	    return state.Patch{ShouldSearch: state.Bool(true)}, nil
//	}
type NodeFunc func(ctx Context, s state.WorkflowState) (state.Patch, error)

// RouterFunc determines the next node based on state.
// It is used for conditional edges where the next node depends on
// runtime state. Routers must be pure functions of the given state:
// given identical state they return identical results.
//
// The router should return a valid node ID or canvas.END.
// Returning an empty string or an unknown node ID causes a runtime error.
type RouterFunc func(ctx Context, s state.WorkflowState) string
