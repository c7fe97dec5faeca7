// Package canvas provides a graph-based orchestration engine for
// collaborative artifact editing workflows.
//
// A workflow is a directed graph of named nodes sharing a single
// WorkflowState. Nodes read the state, optionally call the model
// invocation adapter or the retrieval collaborator, and return a
// state patch. Routers select the next node from the current state;
// all conditional-edge logic lives in pure RouterFuncs.
//
// # Building a graph
//
//	graph := canvas.NewGraph().
//	    AddNode("classify", classify).
//	    AddNode("generate", generate).
//	    AddConditionalEdge("classify", route).
//	    AddEdge("generate", canvas.END).
//	    SetEntry("classify")
//
//	compiled, err := graph.Compile()
//
// Compile validates the topology (entry point, edge targets, a path
// to END) so routing mistakes surface at build time, not mid-run.
//
// # Running
//
// Run executes synchronously and returns the final state. Start
// executes asynchronously and streams node-start, state-patch,
// node-end, and terminal done/error events to the returned Run
// handle; folding the state-patch events in order reconstructs the
// final state.
//
// Within a run nodes execute strictly sequentially. Independent runs
// may execute concurrently and share no mutable state. Cancellation
// is cooperative, checked at step boundaries: an in-flight model call
// is not preempted, but its result is discarded and no further steps
// execute.
//
// The assembled artifact workflow (classifier, generation, rewrite,
// targeted edits, followups, reflections) lives in the agent
// subpackage.
package canvas
