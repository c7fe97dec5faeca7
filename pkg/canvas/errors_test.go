package canvas

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/randalmurphal/canvasflow/pkg/canvas/llm"
	"github.com/randalmurphal/canvasflow/pkg/canvas/schema"
	"github.com/randalmurphal/canvasflow/pkg/canvas/search"
	"github.com/randalmurphal/canvasflow/pkg/canvas/state"
	"github.com/stretchr/testify/assert"
)

// TestKind_InnerCauseWins verifies engine wrappers do not mask the
// domain error underneath.
func TestKind_InnerCauseWins(t *testing.T) {
	schemaViolation := &NodeError{
		NodeID: "generate-artifact",
		Op:     "execute",
		Err:    fmt.Errorf("generate artifact: %w", &schema.ValidationError{Schema: "artifact", Field: "title", Reason: "required field missing"}),
	}
	assert.Equal(t, KindSchemaValidation, Kind(schemaViolation))

	notFound := &NodeError{
		NodeID: "rewrite-artifact",
		Op:     "execute",
		Err:    &state.NotFoundError{Resource: "artifact"},
	}
	assert.Equal(t, KindNotFound, Kind(notFound))

	retrieval := &NodeError{
		NodeID: "web-search",
		Op:     "execute",
		Err:    &search.SearchError{Query: "q", Err: errors.New("502")},
	}
	assert.Equal(t, KindRetrievalFailure, Kind(retrieval))

	invocation := &NodeError{
		NodeID: "classify-intent",
		Op:     "execute",
		Err:    &llm.InvokeError{Model: "m", Detail: "exit 1"},
	}
	assert.Equal(t, KindModelInvocation, Kind(invocation))
}

// TestKind_EngineErrors verifies the mapping for engine-level failures.
func TestKind_EngineErrors(t *testing.T) {
	assert.Equal(t, KindMaxSteps, Kind(&MaxStepsError{Max: 5}))
	assert.Equal(t, KindCancelled, Kind(&CancellationError{NodeID: "a", Cause: context.Canceled}))
	assert.Equal(t, KindCancelled, Kind(context.Canceled))
	assert.Equal(t, KindPanic, Kind(&PanicError{NodeID: "a", Value: "x"}))
	assert.Equal(t, KindRouter, Kind(&RouterError{FromNode: "a", Err: ErrInvalidRouterResult}))
	assert.Equal(t, KindSnapshot, Kind(&SnapshotError{ThreadID: "t", Op: "save", Err: errors.New("disk full")}))
	assert.Equal(t, KindNode, Kind(errors.New("anything else")))
}

// TestNodeError_Unwrap verifies wrapper transparency for errors.Is.
func TestNodeError_Unwrap(t *testing.T) {
	inner := errors.New("cause")
	err := &NodeError{NodeID: "n", Op: "execute", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "n")
	assert.Contains(t, err.Error(), "cause")
}

// TestMaxStepsError_Unwrap verifies sentinel matching.
func TestMaxStepsError_Unwrap(t *testing.T) {
	err := &MaxStepsError{Max: 10, LastNodeID: "spin"}
	assert.ErrorIs(t, err, ErrMaxSteps)
	assert.Contains(t, err.Error(), "spin")
}

// TestCancellationError_Unwrap verifies the cause is reachable.
func TestCancellationError_Unwrap(t *testing.T) {
	err := &CancellationError{NodeID: "a", Cause: context.Canceled, WasExecuting: true}
	assert.ErrorIs(t, err, context.Canceled)
}
