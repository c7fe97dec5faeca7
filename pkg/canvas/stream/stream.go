// Package stream carries incremental run events from the executor to
// a remote consumer. The executor is the single producer; events are
// delivered in production order over a bounded channel, so consumers
// see node lifecycle and state patches exactly as they happened.
package stream

import (
	"sync"

	"github.com/randalmurphal/canvasflow/pkg/canvas/state"
)

// EventType tags a run event.
type EventType string

// Run event types.
const (
	// EventNodeStart announces a node is about to execute.
	EventNodeStart EventType = "node-start"

	// EventStatePatch carries the patch a node produced. Folding all
	// state-patch events in order over the initial state reconstructs
	// the executor's final state.
	EventStatePatch EventType = "state-patch"

	// EventNodeEnd announces a node finished successfully.
	EventNodeEnd EventType = "node-end"

	// EventError is terminal: the stream closes immediately after,
	// with no done event.
	EventError EventType = "error"

	// EventDone closes a successful run.
	EventDone EventType = "done"
)

// Event is one tagged entry in a run stream.
type Event struct {
	// Type tags the event.
	Type EventType `json:"type"`

	// Seq is the 1-based production order, strictly increasing.
	Seq int `json:"seq"`

	// RunID identifies the run that produced the event.
	RunID string `json:"runId"`

	// NodeID is set on node-start, state-patch, and node-end events,
	// and on error events attributable to a node.
	NodeID string `json:"nodeId,omitempty"`

	// Patch is set on state-patch events.
	Patch *state.Patch `json:"patch,omitempty"`

	// ErrKind is the stable error kind string on error events.
	ErrKind string `json:"errKind,omitempty"`

	// ErrDetail is the human-readable error detail on error events.
	ErrDetail string `json:"errDetail,omitempty"`
}

// DefaultBufferSize is the default channel buffer for a run stream.
// The producer blocks when the consumer falls this far behind,
// preserving ordering and backpressure instead of dropping events.
const DefaultBufferSize = 64

// Stream is a single-producer, single-consumer ordered event channel.
//
// The executor calls Emit and Close; the consumer ranges over
// Events(). Emit after Close is a silent no-op so a cancelled run can
// finish its in-flight step without panicking on a closed channel.
type Stream struct {
	ch chan Event

	mu     sync.Mutex
	seq    int
	closed bool
}

// New creates a stream with the given buffer size.
// Sizes below 1 use DefaultBufferSize.
func New(buffer int) *Stream {
	if buffer < 1 {
		buffer = DefaultBufferSize
	}
	return &Stream{ch: make(chan Event, buffer)}
}

// Events returns the consumer side of the stream.
// The channel is closed when the run finishes or fails.
func (s *Stream) Events() <-chan Event {
	return s.ch
}

// Emit assigns the next sequence number and delivers the event.
// Blocks when the buffer is full.
func (s *Stream) Emit(evt Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	evt.Seq = s.seq
	s.mu.Unlock()

	s.ch <- evt
}

// Close closes the stream. Safe to call more than once.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Collect drains the stream into a slice. Blocks until the stream
// closes. Useful for tests and non-incremental consumers.
func Collect(events <-chan Event) []Event {
	var out []Event
	for evt := range events {
		out = append(out, evt)
	}
	return out
}

// Fold applies every state-patch event, in order, to the initial
// state. Folding a completed run's events reconstructs the executor's
// final in-memory state.
func Fold(initial state.WorkflowState, events []Event) state.WorkflowState {
	s := initial
	for _, evt := range events {
		if evt.Type == EventStatePatch && evt.Patch != nil {
			s = evt.Patch.Apply(s)
		}
	}
	return s
}
