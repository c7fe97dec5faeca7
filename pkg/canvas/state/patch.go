package state

import "github.com/randalmurphal/canvasflow/pkg/canvas/search"

// Patch is a partial WorkflowState update returned by a node.
//
// Merge semantics (applied by the executor, in step order):
//   - Messages are appended, never replaced.
//   - Every other slice-valued field is replaced wholesale.
//   - Pointer fields distinguish "not produced" (nil, field untouched)
//     from "produced empty" (non-nil zero value, field overwritten).
type Patch struct {
	// Messages to append to the conversation.
	Messages []Message `json:"messages,omitempty"`

	// Artifact replaces the state's artifact when non-nil.
	Artifact *ArtifactV3 `json:"artifact,omitempty"`

	// WebSearchResults replaces the state's results when non-nil.
	// A pointer to an empty slice records "searched, found nothing".
	WebSearchResults *[]search.Result `json:"webSearchResults,omitempty"`

	// ShouldSearch replaces the state's flag when non-nil.
	ShouldSearch *bool `json:"shouldSearch,omitempty"`

	// Route replaces the state's routing decision when non-nil.
	Route *Route `json:"route,omitempty"`

	// Title replaces the state's title when non-nil.
	Title *string `json:"title,omitempty"`

	// Summary replaces the state's summary when non-nil.
	Summary *string `json:"summary,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return len(p.Messages) == 0 &&
		p.Artifact == nil &&
		p.WebSearchResults == nil &&
		p.ShouldSearch == nil &&
		p.Route == nil &&
		p.Title == nil &&
		p.Summary == nil
}

// Apply merges the patch into a copy of the state and returns it.
// The receiver state is not modified.
func (p Patch) Apply(s WorkflowState) WorkflowState {
	out := s

	if len(p.Messages) > 0 {
		msgs := make([]Message, len(s.Messages), len(s.Messages)+len(p.Messages))
		copy(msgs, s.Messages)
		out.Messages = append(msgs, p.Messages...)
	}
	if p.Artifact != nil {
		a := p.Artifact.Clone()
		out.Artifact = &a
	}
	if p.WebSearchResults != nil {
		results := make([]search.Result, len(*p.WebSearchResults))
		copy(results, *p.WebSearchResults)
		out.WebSearchResults = results
	}
	if p.ShouldSearch != nil {
		v := *p.ShouldSearch
		out.ShouldSearch = &v
	}
	if p.Route != nil {
		out.Route = *p.Route
	}
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Summary != nil {
		out.Summary = *p.Summary
	}

	return out
}

// Bool returns a pointer to b, for building patches.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }

// RoutePtr returns a pointer to r, for building patches.
func RoutePtr(r Route) *Route { return &r }
