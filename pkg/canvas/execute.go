package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/canvasflow/pkg/canvas/observability"
	"github.com/randalmurphal/canvasflow/pkg/canvas/state"
	"github.com/randalmurphal/canvasflow/pkg/canvas/stream"
)

// snapshotNamespace is the store namespace for thread snapshots.
var snapshotNamespace = []string{"threads"}

// Run executes the graph synchronously with the given initial state.
// Returns the final state and any error encountered.
//
// On success, returns the state after the last node executed before END.
// On error, returns the state at the point of failure (useful for
// debugging): progress accumulated before the failure is preserved,
// never rolled back.
//
// Execution flow:
//  1. Start at the entry point node
//  2. Check for cancellation
//  3. Execute the current node and merge its patch
//  4. Determine the next node (via simple or conditional edge)
//  5. Repeat until END is reached or an error occurs
//
// For incremental delivery use Start() instead.
func (cg *CompiledGraph) Run(ctx Context, s state.WorkflowState, opts ...RunOption) (state.WorkflowState, error) {
	if ctx == nil {
		return s, ErrNilContext
	}
	if s.ThreadID == "" {
		return s, ErrThreadIDRequired
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return cg.runLoop(ctx, s, &cfg, nil)
}

// runLoop drives execution from the entry point to END, emitting
// events to the stream when one is provided. State patches are applied
// in strict step order; array-valued fields are replaced, not
// concatenated, except messages, which append (see state.Patch).
func (cg *CompiledGraph) runLoop(runCtx Context, s state.WorkflowState, cfg *runConfig, out *stream.Stream) (result state.WorkflowState, runErr error) {
	runID := cfg.runID
	if runID == "" {
		runID = runCtx.RunID()
	}

	startTime := time.Now()
	observability.LogRunStart(runCtx.Logger(), runID, s.ThreadID)

	var tracingCtx context.Context = runCtx
	var runSpan trace.Span
	if cfg.tracingEnabled {
		tracingCtx, runSpan = cfg.spans.StartRunSpan(runCtx, s.ThreadID, runID)
		defer func() {
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	var nodeCount int
	result, nodeCount, runErr = cg.step(tracingCtx, runCtx, s, runID, cfg, out)

	duration := time.Since(startTime)
	durationMs := float64(duration.Milliseconds())
	cfg.metrics.RecordGraphRun(runCtx, runErr == nil, duration)

	if runErr != nil {
		lastNode := ""
		switch e := runErr.(type) {
		case *NodeError:
			lastNode = e.NodeID
		case *MaxStepsError:
			lastNode = e.LastNodeID
		case *CancellationError:
			lastNode = e.NodeID
		}
		observability.LogRunError(runCtx.Logger(), runID, runErr, durationMs, lastNode)
	} else {
		observability.LogRunComplete(runCtx.Logger(), runID, durationMs, nodeCount)
	}

	return result, runErr
}

// step is the sequential execution loop. Nodes run strictly one at a
// time within a run; a node suspends only while awaiting the model
// adapter or the retrieval collaborator.
func (cg *CompiledGraph) step(tracingCtx context.Context, runCtx Context, s state.WorkflowState, runID string, cfg *runConfig, out *stream.Stream) (state.WorkflowState, int, error) {
	current := cg.entryPoint
	steps := 0
	nodeCount := 0

	for current != END {
		steps++
		if steps > cfg.maxSteps {
			return s, nodeCount, &MaxStepsError{
				Max:        cfg.maxSteps,
				LastNodeID: current,
				State:      s,
			}
		}

		// Check for cancellation before executing the node
		select {
		case <-runCtx.Done():
			return s, nodeCount, &CancellationError{
				NodeID:       current,
				State:        s,
				Cause:        context.Cause(runCtx),
				WasExecuting: false,
			}
		default:
		}

		observability.LogNodeStart(runCtx.Logger(), current)
		if out != nil {
			out.Emit(stream.Event{Type: stream.EventNodeStart, RunID: runID, NodeID: current})
		}

		nodeTracingCtx := tracingCtx
		var nodeSpan trace.Span
		if cfg.tracingEnabled {
			nodeTracingCtx, nodeSpan = cfg.spans.StartNodeSpan(tracingCtx, current)
		}

		nodeStart := time.Now()
		patch, nodeErr := cg.executeNode(runCtx, current, s)
		nodeDuration := time.Since(nodeStart)

		cfg.metrics.RecordNodeExecution(nodeTracingCtx, current, nodeDuration, nodeErr)
		if cfg.tracingEnabled {
			cfg.spans.EndSpanWithError(nodeSpan, nodeErr)
		}

		if nodeErr != nil {
			observability.LogNodeError(runCtx.Logger(), current, nodeErr)
			return s, nodeCount, nodeErr
		}

		// A result arriving after cancellation is discarded: the patch
		// is never applied, so the artifact history gains either the
		// full new entry or nothing.
		select {
		case <-runCtx.Done():
			return s, nodeCount, &CancellationError{
				NodeID:       current,
				State:        s,
				Cause:        context.Cause(runCtx),
				WasExecuting: true,
			}
		default:
		}

		s = patch.Apply(s)
		if out != nil {
			p := patch
			out.Emit(stream.Event{Type: stream.EventStatePatch, RunID: runID, NodeID: current, Patch: &p})
			out.Emit(stream.Event{Type: stream.EventNodeEnd, RunID: runID, NodeID: current})
		}
		observability.LogNodeComplete(runCtx.Logger(), current, float64(nodeDuration.Milliseconds()))
		nodeCount++

		next, err := cg.nextNode(runCtx, s, current)
		if err != nil {
			return s, nodeCount, err
		}

		// Snapshot after each successful step
		if cfg.snapshotStore != nil {
			if err := cg.saveSnapshot(runCtx, cfg, s); err != nil {
				return s, nodeCount, err
			}
		}

		current = next
	}

	return s, nodeCount, nil
}

// saveSnapshot persists the serialized state under the thread's key.
// Failures are logged and swallowed unless snapshots are fatal.
func (cg *CompiledGraph) saveSnapshot(ctx Context, cfg *runConfig, s state.WorkflowState) error {
	data, err := json.Marshal(s)
	if err != nil {
		if cfg.snapshotFatal {
			return &SnapshotError{ThreadID: s.ThreadID, Op: "serialize", Err: err}
		}
		observability.LogSnapshotError(ctx.Logger(), s.ThreadID, "serialize", err)
		return nil
	}

	if err := cfg.snapshotStore.Put(snapshotNamespace, s.ThreadID, data); err != nil {
		if cfg.snapshotFatal {
			return &SnapshotError{ThreadID: s.ThreadID, Op: "save", Err: err}
		}
		observability.LogSnapshotError(ctx.Logger(), s.ThreadID, "save", err)
		return nil
	}

	observability.LogSnapshot(ctx.Logger(), s.ThreadID, len(data))
	cfg.metrics.RecordSnapshot(ctx, s.ThreadID, int64(len(data)))
	return nil
}

// executeNode executes a single node with panic recovery.
// Returns the node's patch and any error (including wrapped panics).
func (cg *CompiledGraph) executeNode(ctx Context, nodeID string, s state.WorkflowState) (patch state.Patch, err error) {
	fn, exists := cg.getNode(nodeID)
	if !exists {
		// This shouldn't happen if compilation was successful
		return state.Patch{}, &NodeError{
			NodeID: nodeID,
			Op:     "lookup",
			Err:    fmt.Errorf("node not found: %s", nodeID),
		}
	}

	// Create node-specific context with enriched logger
	nodeCtx := ctx
	if ec, ok := ctx.(*executionContext); ok {
		nodeCtx = ec.withNodeID(nodeID)
	}

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			patch = state.Patch{}
			err = &PanicError{
				NodeID: nodeID,
				Value:  r,
				Stack:  string(debug.Stack()),
			}
		}
	}()

	patch, err = fn(nodeCtx, s)
	if err != nil {
		return state.Patch{}, &NodeError{
			NodeID: nodeID,
			Op:     "execute",
			Err:    err,
		}
	}

	return patch, nil
}

// nextNode determines the next node to execute.
// Checks conditional edges first, then simple edges.
func (cg *CompiledGraph) nextNode(ctx Context, s state.WorkflowState, current string) (string, error) {
	// Check for conditional edge first
	if router, exists := cg.getRouter(current); exists {
		// Create node-specific context for the router
		routerCtx := ctx
		if ec, ok := ctx.(*executionContext); ok {
			routerCtx = ec.withNodeID(current)
		}

		next := router(routerCtx, s)

		// Validate router result
		if next == "" {
			return "", &RouterError{
				FromNode: current,
				Returned: next,
				Err:      ErrInvalidRouterResult,
			}
		}

		if next != END {
			if _, exists := cg.getNode(next); !exists {
				return "", &RouterError{
					FromNode: current,
					Returned: next,
					Err:      ErrRouterTargetNotFound,
				}
			}
		}

		return next, nil
	}

	// Use simple edges
	edges := cg.getEdges(current)
	if len(edges) == 0 {
		// No outgoing edges - this shouldn't happen if compilation was successful
		return "", &NodeError{
			NodeID: current,
			Op:     "routing",
			Err:    fmt.Errorf("no outgoing edge from node %s", current),
		}
	}

	// Simple edges are single-target; take the first one
	return edges[0], nil
}
