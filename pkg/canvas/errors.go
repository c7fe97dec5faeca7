package canvas

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/canvasflow/pkg/canvas/llm"
	"github.com/randalmurphal/canvasflow/pkg/canvas/schema"
	"github.com/randalmurphal/canvasflow/pkg/canvas/search"
	"github.com/randalmurphal/canvasflow/pkg/canvas/state"
)

// Sentinel errors for graph building and compilation.
var (
	// ErrNoEntryPoint indicates SetEntry() was not called before Compile().
	ErrNoEntryPoint = errors.New("entry point not set")

	// ErrEntryNotFound indicates the entry point references a non-existent node.
	ErrEntryNotFound = errors.New("entry point node not found")

	// ErrNodeNotFound indicates an edge references a non-existent node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoPathToEnd indicates no path exists from the entry point to END.
	ErrNoPathToEnd = errors.New("no path to END from entry")
)

// Sentinel errors for execution.
var (
	// ErrMaxSteps indicates the execution loop exceeded the configured limit.
	ErrMaxSteps = errors.New("exceeded maximum steps")

	// ErrNilContext indicates a run was started with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrThreadIDRequired indicates the initial state carried no thread ID.
	ErrThreadIDRequired = errors.New("thread ID required")

	// ErrInvalidRouterResult indicates a router function returned an empty string.
	ErrInvalidRouterResult = errors.New("router returned empty string")

	// ErrRouterTargetNotFound indicates a router function returned an unknown node ID.
	ErrRouterTargetNotFound = errors.New("router returned unknown node")
)

// NodeError wraps an error with node context.
// It provides information about which node failed and what operation was attempted.
type NodeError struct {
	// NodeID is the identifier of the node that failed.
	NodeID string
	// Op is the operation that failed (e.g., "execute").
	Op string
	// Err is the underlying error from the node.
	Err error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %s: %v", e.NodeID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// PanicError captures panic information from node execution.
// It includes the stack trace for debugging.
type PanicError struct {
	// NodeID is the identifier of the node that panicked.
	NodeID string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("node %s panicked: %v", e.NodeID, e.Value)
}

// CancellationError captures the state when execution was cancelled.
// It preserves the state at the point of cancellation for recovery.
type CancellationError struct {
	// NodeID is the node that was about to execute or was executing.
	NodeID string
	// State is the state at cancellation.
	State state.WorkflowState
	// Cause is the underlying cancellation cause
	// (context.Canceled or context.DeadlineExceeded).
	Cause error
	// WasExecuting is true if cancellation occurred during node execution.
	WasExecuting bool
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	if e.WasExecuting {
		return fmt.Sprintf("cancelled during node %s: %v", e.NodeID, e.Cause)
	}
	return fmt.Sprintf("cancelled before node %s: %v", e.NodeID, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// RouterError wraps errors from conditional edge routing.
// It provides context about which router failed and what it returned.
type RouterError struct {
	// FromNode is the node with the conditional edge.
	FromNode string
	// Returned is the value the router returned.
	Returned string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RouterError) Error() string {
	return fmt.Sprintf("router from %s returned %q: %v", e.FromNode, e.Returned, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RouterError) Unwrap() error {
	return e.Err
}

// MaxStepsError provides context when the step limit is exceeded,
// guarding against routing cycles.
// It includes the state at termination for inspection.
type MaxStepsError struct {
	// Max is the configured step limit.
	Max int
	// LastNodeID is the node that would have executed next.
	LastNodeID string
	// State is the state at termination.
	State state.WorkflowState
}

// Error implements the error interface.
func (e *MaxStepsError) Error() string {
	return fmt.Sprintf("exceeded maximum steps (%d) at node %s", e.Max, e.LastNodeID)
}

// Unwrap returns ErrMaxSteps for errors.Is support.
func (e *MaxStepsError) Unwrap() error {
	return ErrMaxSteps
}

// SnapshotError wraps errors from thread snapshot persistence.
type SnapshotError struct {
	// ThreadID is the thread whose snapshot failed.
	ThreadID string
	// Op is the operation that failed ("serialize", "save").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s for thread %s: %v", e.Op, e.ThreadID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SnapshotError) Unwrap() error {
	return e.Err
}

// Stable error kind strings delivered in stream error events.
const (
	KindSchemaValidation = "schema-validation"
	KindNotFound         = "not-found"
	KindRetrievalFailure = "retrieval-failure"
	KindMaxSteps         = "max-steps-exceeded"
	KindModelInvocation  = "model-invocation"
	KindCancelled        = "cancelled"
	KindPanic            = "panic"
	KindRouter           = "router"
	KindSnapshot         = "snapshot"
	KindNode             = "node"
)

// Kind maps an error to its stable kind string. The inner cause wins
// over engine wrappers: a NodeError wrapping a schema failure reports
// schema-validation, not node.
func Kind(err error) string {
	var (
		schemaErr   *schema.ValidationError
		notFoundErr *state.NotFoundError
		searchErr   *search.SearchError
		invokeErr   *llm.InvokeError
		maxErr      *MaxStepsError
		cancelErr   *CancellationError
		panicErr    *PanicError
		routerErr   *RouterError
		snapErr     *SnapshotError
	)

	switch {
	case errors.As(err, &schemaErr):
		return KindSchemaValidation
	case errors.As(err, &notFoundErr):
		return KindNotFound
	case errors.As(err, &searchErr):
		return KindRetrievalFailure
	case errors.As(err, &invokeErr):
		return KindModelInvocation
	case errors.As(err, &maxErr), errors.Is(err, ErrMaxSteps):
		return KindMaxSteps
	case errors.As(err, &cancelErr),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.As(err, &panicErr):
		return KindPanic
	case errors.As(err, &routerErr):
		return KindRouter
	case errors.As(err, &snapErr):
		return KindSnapshot
	default:
		return KindNode
	}
}
