package canvas

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/randalmurphal/canvasflow/pkg/canvas/state"
)

// newTestContext builds an execution context with a silent logger.
func newTestContext(opts ...ContextOption) Context {
	base := []ContextOption{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewContext(context.Background(), append(base, opts...)...)
}

// initialState returns a minimal valid starting state.
func initialState() state.WorkflowState {
	return state.WorkflowState{
		ThreadID: "thread-1",
		Messages: []state.Message{{Role: state.RoleUser, Content: "hello"}},
	}
}

// appendMessage returns a node that appends one assistant message.
func appendMessage(text string) NodeFunc {
	return func(ctx Context, s state.WorkflowState) (state.Patch, error) {
		return state.Patch{Messages: []state.Message{{
			Role:    state.RoleAssistant,
			Content: text,
		}}}, nil
	}
}

// setTitle returns a node that sets the state title.
func setTitle(title string) NodeFunc {
	return func(ctx Context, s state.WorkflowState) (state.Patch, error) {
		return state.Patch{Title: state.String(title)}, nil
	}
}

// noopNode changes nothing.
func noopNode(ctx Context, s state.WorkflowState) (state.Patch, error) {
	return state.Patch{}, nil
}

// failingNode returns a node that always fails with the given message.
func failingNode(msg string) NodeFunc {
	return func(ctx Context, s state.WorkflowState) (state.Patch, error) {
		return state.Patch{}, fmt.Errorf("%s", msg)
	}
}

// panickingNode panics with the given value.
func panickingNode(value any) NodeFunc {
	return func(ctx Context, s state.WorkflowState) (state.Patch, error) {
		panic(value)
	}
}

// routeTo returns a router that always picks the same target.
func routeTo(target string) RouterFunc {
	return func(ctx Context, s state.WorkflowState) string {
		return target
	}
}

// linearGraph compiles a -> b -> END with message-appending nodes.
func linearGraph() (*CompiledGraph, error) {
	return NewGraph().
		AddNode("a", appendMessage("from a")).
		AddNode("b", appendMessage("from b")).
		AddEdge("a", "b").
		AddEdge("b", END).
		SetEntry("a").
		Compile()
}
