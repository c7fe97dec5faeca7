package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/randalmurphal/canvasflow/pkg/canvas"
	"github.com/randalmurphal/canvasflow/pkg/canvas/llm"
	"github.com/randalmurphal/canvasflow/pkg/canvas/observability"
	"github.com/randalmurphal/canvasflow/pkg/canvas/search"
	"github.com/randalmurphal/canvasflow/pkg/canvas/state"
	"github.com/randalmurphal/canvasflow/pkg/canvas/store"
)

var threadNamespace = []string{"threads"}

// Session runs assistant turns against persisted threads. Each turn
// loads the thread snapshot, appends the incoming message, executes
// the graph, and snapshots the result after every step.
//
// Safe for concurrent use; concurrent turns on the same thread are
// the caller's problem.
type Session struct {
	assistant *Assistant
	graph     *canvas.CompiledGraph
	client    llm.Client
	searcher  search.Searcher
	memory    store.Store
	logger    *slog.Logger
	metrics   observability.MetricsRecorder

	mu   sync.Mutex
	runs map[string]*canvas.Run
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClient sets the model client used by every node.
func WithClient(client llm.Client) SessionOption {
	return func(s *Session) { s.client = client }
}

// WithSearcher sets the web search collaborator.
func WithSearcher(searcher search.Searcher) SessionOption {
	return func(s *Session) { s.searcher = searcher }
}

// WithMemory sets the store used for thread snapshots and reflections.
func WithMemory(memory store.Store) SessionOption {
	return func(s *Session) { s.memory = memory }
}

// WithSessionLogger sets the logger. Defaults to slog.Default.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithSessionMetrics sets the metrics recorder. The recorder sees both
// engine measurements (node executions, run latency, snapshots) and
// per-node model invocations. Defaults to no-op.
func WithSessionMetrics(m observability.MetricsRecorder) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// NewSession builds the assistant graph and wires its collaborators.
func NewSession(assistant *Assistant, opts ...SessionOption) (*Session, error) {
	graph, err := assistant.BuildGraph()
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	s := &Session{
		assistant: assistant,
		graph:     graph,
		logger:    slog.Default(),
		runs:      make(map[string]*canvas.Run),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// StartRun begins one asynchronous turn: the stored thread state (if
// any) plus the incoming message, executed through the graph. The
// returned Run streams events and yields the final state via Wait.
func (s *Session) StartRun(ctx context.Context, threadID string, msg state.Message) (*canvas.Run, error) {
	if threadID == "" {
		return nil, canvas.ErrThreadIDRequired
	}

	ws, err := s.loadThread(threadID)
	if err != nil {
		return nil, err
	}
	ws.Messages = append(ws.Messages, msg)

	// Per-turn fields restart from scratch each turn.
	ws.Route = ""
	ws.ShouldSearch = nil
	ws.WebSearchResults = nil

	cctx := canvas.NewContext(ctx,
		canvas.WithLogger(s.logger),
		canvas.WithLLM(s.client),
		canvas.WithSearcher(s.searcher),
		canvas.WithStore(s.memory),
		canvas.WithContextMetrics(s.metrics),
	)

	runOpts := []canvas.RunOption{canvas.WithMaxSteps(s.assistant.Opts().MaxSteps)}
	if s.memory != nil {
		runOpts = append(runOpts, canvas.WithSnapshots(s.memory, false))
	}
	if s.metrics != nil {
		runOpts = append(runOpts, canvas.WithMetrics(s.metrics))
	}

	run := s.graph.Start(cctx, ws, runOpts...)

	s.mu.Lock()
	s.runs[run.ID()] = run
	s.mu.Unlock()
	return run, nil
}

// Run executes one turn synchronously and returns the final state.
func (s *Session) Run(ctx context.Context, threadID string, msg state.Message) (state.WorkflowState, error) {
	run, err := s.StartRun(ctx, threadID, msg)
	if err != nil {
		return state.WorkflowState{}, err
	}
	defer s.forget(run.ID())

	for range run.Events() {
		// Drain so the producer never blocks.
	}
	return run.Wait()
}

// CancelRun requests cooperative cancellation of an active run.
// Returns false when the run is unknown or already finished.
func (s *Session) CancelRun(runID string) bool {
	s.mu.Lock()
	run, ok := s.runs[runID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	run.Cancel()
	return true
}

// ActiveRuns returns the IDs of runs started and not yet forgotten.
func (s *Session) ActiveRuns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	return ids
}

// Forget drops the handle for a finished run. Idempotent.
func (s *Session) Forget(runID string) {
	s.forget(runID)
}

func (s *Session) forget(runID string) {
	s.mu.Lock()
	delete(s.runs, runID)
	s.mu.Unlock()
}

// loadThread restores the latest snapshot, or returns a fresh state
// when the thread has none.
func (s *Session) loadThread(threadID string) (state.WorkflowState, error) {
	fresh := state.WorkflowState{ThreadID: threadID}
	if s.memory == nil {
		return fresh, nil
	}

	data, err := s.memory.Get(threadNamespace, threadID)
	if errors.Is(err, store.ErrNotFound) {
		return fresh, nil
	}
	if err != nil {
		return state.WorkflowState{}, fmt.Errorf("load thread %s: %w", threadID, err)
	}

	var ws state.WorkflowState
	if err := json.Unmarshal(data, &ws); err != nil {
		return state.WorkflowState{}, fmt.Errorf("decode thread %s: %w", threadID, err)
	}
	ws.ThreadID = threadID
	return ws, nil
}
