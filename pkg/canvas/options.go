package canvas

import (
	"github.com/randalmurphal/canvasflow/pkg/canvas/observability"
	"github.com/randalmurphal/canvasflow/pkg/canvas/store"
)

// runConfig holds configuration for graph execution.
type runConfig struct {
	maxSteps       int
	runID          string
	streamBuffer   int
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
	snapshotStore  store.Store
	snapshotFatal  bool
}

// defaultRunConfig returns the default execution configuration.
func defaultRunConfig() runConfig {
	return runConfig{
		maxSteps:     1000,
		streamBuffer: 0,
		metrics:      observability.NoopMetrics{},
		spans:        observability.NoopSpanManager{},
	}
}

// RunOption configures execution behavior.
type RunOption func(*runConfig)

// WithMaxSteps sets the maximum number of node executions.
// Default: 1000
//
// This guards against routing cycles hanging forever. If a run
// exceeds this limit, it fails with MaxStepsError.
func WithMaxSteps(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxSteps = n
		}
	}
}

// WithRunID sets the run identifier, overriding the context's.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithStreamBuffer sets the event stream buffer size for Start().
// The producer blocks (never drops) when the consumer falls behind.
func WithStreamBuffer(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.streamBuffer = n
		}
	}
}

// WithMetrics sets the metrics recorder.
// Default: no-op.
func WithMetrics(m observability.MetricsRecorder) RunOption {
	return func(c *runConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables span creation via the given manager.
func WithTracing(spans observability.SpanManager) RunOption {
	return func(c *runConfig) {
		if spans != nil {
			c.spans = spans
			c.tracingEnabled = true
		}
	}
}

// WithSnapshots persists the workflow state to the store after each
// successful step, keyed by thread ID under the "threads" namespace.
// Snapshot failures are logged and ignored unless fatal is true.
func WithSnapshots(s store.Store, fatal bool) RunOption {
	return func(c *runConfig) {
		c.snapshotStore = s
		c.snapshotFatal = fatal
	}
}
