package canvas

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/randalmurphal/canvasflow/pkg/canvas/llm"
	"github.com/randalmurphal/canvasflow/pkg/canvas/observability"
	"github.com/randalmurphal/canvasflow/pkg/canvas/search"
	"github.com/randalmurphal/canvasflow/pkg/canvas/store"
)

// Context provides execution context to nodes.
// It extends context.Context with the declared external collaborators
// and run metadata.
//
// Context is immutable after creation. The executor creates derived
// contexts for each node with updated NodeID and enriched logger.
type Context interface {
	context.Context

	// Services

	// Logger returns the configured logger, enriched with run and node context.
	// Never returns nil - defaults to slog.Default() if not configured.
	Logger() *slog.Logger

	// LLM returns the model invocation adapter, or nil if not configured.
	// Nodes should check for nil before using.
	LLM() llm.Client

	// Search returns the retrieval collaborator, or nil if not configured.
	// Nodes should check for nil before using.
	Search() search.Searcher

	// Store returns the memory store, or nil if not configured.
	// Nodes should check for nil before using.
	Store() store.Store

	// Metrics returns the metrics recorder.
	// Never returns nil - defaults to a no-op recorder if not configured.
	Metrics() observability.MetricsRecorder

	// Metadata

	// RunID returns the unique identifier for this execution run.
	// Auto-generated if not configured.
	RunID() string

	// NodeID returns the current node being executed.
	// Empty string before execution starts.
	NodeID() string

	// Attempt returns the retry attempt number (1 = first attempt).
	Attempt() int
}

// executionContext is the internal implementation of Context.
type executionContext struct {
	context.Context

	logger   *slog.Logger
	client   llm.Client
	searcher search.Searcher
	memory   store.Store
	metrics  observability.MetricsRecorder
	runID    string
	nodeID   string
	attempt  int
}

// Logger returns the configured logger.
func (c *executionContext) Logger() *slog.Logger {
	return c.logger
}

// LLM returns the model invocation adapter.
func (c *executionContext) LLM() llm.Client {
	return c.client
}

// Search returns the retrieval collaborator.
func (c *executionContext) Search() search.Searcher {
	return c.searcher
}

// Store returns the memory store.
func (c *executionContext) Store() store.Store {
	return c.memory
}

// Metrics returns the metrics recorder.
func (c *executionContext) Metrics() observability.MetricsRecorder {
	return c.metrics
}

// RunID returns the run identifier.
func (c *executionContext) RunID() string {
	return c.runID
}

// NodeID returns the current node identifier.
func (c *executionContext) NodeID() string {
	return c.nodeID
}

// Attempt returns the retry attempt number.
func (c *executionContext) Attempt() int {
	return c.attempt
}

// ContextOption configures a Context.
type ContextOption func(*executionContext)

// WithLogger sets the logger for the context.
// The logger will be enriched with run_id, node_id, and attempt during execution.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		c.logger = logger
	}
}

// WithLLM sets the model invocation adapter for the context.
func WithLLM(client llm.Client) ContextOption {
	return func(c *executionContext) {
		c.client = client
	}
}

// WithSearcher sets the retrieval collaborator for the context.
func WithSearcher(searcher search.Searcher) ContextOption {
	return func(c *executionContext) {
		c.searcher = searcher
	}
}

// WithStore sets the memory store for the context.
func WithStore(memory store.Store) ContextOption {
	return func(c *executionContext) {
		c.memory = memory
	}
}

// WithContextMetrics sets the metrics recorder for the context, so
// nodes can record their own measurements (model invocations in
// particular).
func WithContextMetrics(m observability.MetricsRecorder) ContextOption {
	return func(c *executionContext) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithContextRunID sets the run identifier for the context.
// If not set, a UUID will be auto-generated.
func WithContextRunID(id string) ContextOption {
	return func(c *executionContext) {
		c.runID = id
	}
}

// NewContext creates an execution context from a standard context.
// The returned Context wraps the provided context.Context and adds
// the collaborators and run metadata.
//
// Example:
//
//	ctx := canvas.NewContext(context.Background(),
//	    canvas.WithLogger(myLogger),
//	    canvas.WithLLM(client))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context: ctx,
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		runID:   uuid.New().String(),
		attempt: 1,
	}

	for _, opt := range opts {
		opt(ec)
	}

	return ec
}

// withNodeID returns a new context with the given node ID set.
// Used internally by the executor to enrich the context per-node.
func (c *executionContext) withNodeID(nodeID string) *executionContext {
	return &executionContext{
		Context:  c.Context,
		logger:   c.logger.With("run_id", c.runID, "node_id", nodeID, "attempt", c.attempt),
		client:   c.client,
		searcher: c.searcher,
		memory:   c.memory,
		metrics:  c.metrics,
		runID:    c.runID,
		nodeID:   nodeID,
		attempt:  c.attempt,
	}
}
