package canvas

import (
	"context"
	"sync"
	"time"

	"github.com/randalmurphal/canvasflow/pkg/canvas/state"
	"github.com/randalmurphal/canvasflow/pkg/canvas/stream"
)

// Run is a handle to an in-flight streaming execution.
//
// The consumer reads Events() until the channel closes, then (or
// concurrently) calls Wait() for the final state. Cancel() stops the
// run cooperatively: the step already in flight finishes emitting its
// events, then the run halts with a cancellation error.
type Run struct {
	id     string
	stream *stream.Stream
	cancel context.CancelCauseFunc

	done  chan struct{}
	once  sync.Once
	final state.WorkflowState
	err   error
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.id
}

// Events returns the ordered event stream for this run.
// The channel closes after the terminal done or error event.
func (r *Run) Events() <-chan stream.Event {
	return r.stream.Events()
}

// Cancel requests cooperative cancellation.
// Safe to call multiple times and after completion.
func (r *Run) Cancel() {
	r.cancel(context.Canceled)
}

// Wait blocks until the run finishes and returns the final state and
// terminal error, if any. The state reflects all progress made before
// a failure; it is never rolled back.
func (r *Run) Wait() (state.WorkflowState, error) {
	<-r.done
	return r.final, r.err
}

// finish records the outcome exactly once.
func (r *Run) finish(final state.WorkflowState, err error) {
	r.once.Do(func() {
		r.final = final
		r.err = err
		close(r.done)
	})
}

// Start executes the graph asynchronously, streaming incremental
// events to the returned Run handle.
//
// Event order per step is node-start, state-patch, node-end. A
// successful run ends with a done event; a failed run ends with an
// error event carrying a stable error kind, and the stream closes
// immediately after with no done event. Events are delivered in
// production order; the producer blocks rather than reorder or drop.
//
// Example:
//
//	run := compiled.Start(ctx, initial)
//	for evt := range run.Events() {
//	    // forward to client
//	}
//	final, err := run.Wait()
func (cg *CompiledGraph) Start(ctx Context, s state.WorkflowState, opts ...RunOption) *Run {
	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	runID := cfg.runID
	if runID == "" && ctx != nil {
		runID = ctx.RunID()
	}

	out := stream.New(cfg.streamBuffer)
	runCtx, cancel := context.WithCancelCause(context.Background())

	r := &Run{
		id:     runID,
		stream: out,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if ctx == nil {
		out.Emit(stream.Event{Type: stream.EventError, RunID: runID, ErrKind: KindNode, ErrDetail: ErrNilContext.Error()})
		out.Close()
		r.finish(s, ErrNilContext)
		cancel(nil)
		return r
	}
	if s.ThreadID == "" {
		out.Emit(stream.Event{Type: stream.EventError, RunID: runID, ErrKind: KindNode, ErrDetail: ErrThreadIDRequired.Error()})
		out.Close()
		r.finish(s, ErrThreadIDRequired)
		cancel(nil)
		return r
	}

	// Derive a cancellable context so Run.Cancel stops the loop even
	// when the caller's context stays live.
	var execCtx Context
	if ec, ok := ctx.(*executionContext); ok {
		merged := *ec
		merged.Context = mergeDone(ec.Context, runCtx)
		execCtx = &merged
	} else {
		execCtx = &cancellableContext{Context: ctx, merged: mergeDone(ctx, runCtx)}
	}

	go func() {
		defer cancel(nil)

		final, err := cg.runLoop(execCtx, s, &cfg, out)
		if err != nil {
			out.Emit(stream.Event{
				Type:      stream.EventError,
				RunID:     runID,
				NodeID:    errorNodeID(err),
				ErrKind:   Kind(err),
				ErrDetail: err.Error(),
			})
		} else {
			out.Emit(stream.Event{Type: stream.EventDone, RunID: runID})
		}
		out.Close()
		r.finish(final, err)
	}()

	return r
}

// errorNodeID extracts the failing node from a run error, if known.
func errorNodeID(err error) string {
	switch e := err.(type) {
	case *NodeError:
		return e.NodeID
	case *PanicError:
		return e.NodeID
	case *RouterError:
		return e.FromNode
	case *CancellationError:
		return e.NodeID
	case *MaxStepsError:
		return e.LastNodeID
	default:
		return ""
	}
}

// cancellableContext layers run cancellation over a caller supplied
// Context implementation. Services and metadata delegate to the
// wrapped Context; lifecycle methods come from the merged context.
type cancellableContext struct {
	Context
	merged context.Context
}

func (c *cancellableContext) Deadline() (time.Time, bool) { return c.merged.Deadline() }
func (c *cancellableContext) Done() <-chan struct{}       { return c.merged.Done() }
func (c *cancellableContext) Err() error                  { return c.merged.Err() }
func (c *cancellableContext) Value(key any) any           { return c.merged.Value(key) }

// mergeDone returns a context that is done when either parent is done.
// Values are read from primary only.
func mergeDone(primary, secondary context.Context) context.Context {
	merged, cancel := context.WithCancelCause(primary)
	go func() {
		select {
		case <-primary.Done():
			cancel(context.Cause(primary))
		case <-secondary.Done():
			cancel(context.Cause(secondary))
		case <-merged.Done():
		}
	}()
	return merged
}
