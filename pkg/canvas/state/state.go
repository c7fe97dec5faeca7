// Package state defines the shared workflow state threaded through a
// graph run: the conversation, the versioned artifact, and the patch
// merge rules that nodes use to update it.
package state

import (
	"github.com/randalmurphal/canvasflow/pkg/canvas/search"
)

// Role identifies the sender of a conversation turn.
type Role string

// Standard message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// AttachmentKind discriminates message attachment variants.
type AttachmentKind string

// Supported attachment kinds.
const (
	// AttachmentHighlight marks a user-selected region of the current
	// artifact content, used by targeted edits.
	AttachmentHighlight AttachmentKind = "highlight"

	// AttachmentDocument references a context document by name.
	AttachmentDocument AttachmentKind = "document"
)

// Attachment is optional structured data carried by a message.
type Attachment struct {
	Kind AttachmentKind `json:"kind"`
	Text string         `json:"text,omitempty"`
	Name string         `json:"name,omitempty"`
}

// Message is one conversational turn.
type Message struct {
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Document is an externally supplied reference document. Documents are
// read-only input: nodes may interpolate them into prompts but never
// modify them.
type Document struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Route is the classifier's decision about how to handle the latest
// user message. The empty value means the classifier has not run yet.
type Route string

// Classifier routing decisions.
const (
	RouteGenerate     Route = "generate"
	RouteRewrite      Route = "rewrite"
	RouteUpdateRegion Route = "update-region"
	RouteReplyGeneral Route = "reply-general"
)

// KnownRoutes lists every valid classifier decision.
func KnownRoutes() []Route {
	return []Route{RouteGenerate, RouteRewrite, RouteUpdateRegion, RouteReplyGeneral}
}

// WorkflowState is the single mutable record threaded through a run.
//
// Fields a node has not yet produced are absent (nil pointer, empty
// string, nil slice) rather than placeholder values, so routers can
// distinguish "not yet computed" from "computed empty".
type WorkflowState struct {
	// ThreadID correlates the run to its conversation.
	// Required; immutable for the run's lifetime.
	ThreadID string `json:"threadId"`

	// Messages is the ordered conversation. Append-only within a run;
	// the last message commonly drives routing.
	Messages []Message `json:"messages"`

	// Artifact is the versioned document. Nil until first generation.
	Artifact *ArtifactV3 `json:"artifact,omitempty"`

	// ContextDocuments are read-only reference inputs.
	ContextDocuments []Document `json:"contextDocuments,omitempty"`

	// WebSearchResults is nil when no search node has run; an empty
	// non-nil slice means a search ran and produced (or degraded to)
	// nothing.
	WebSearchResults []search.Result `json:"webSearchResults,omitempty"`

	// ShouldSearch is the classifier's search flag.
	// Nil until classification runs.
	ShouldSearch *bool `json:"shouldSearch,omitempty"`

	// Route is the classifier's decision. Empty until classification runs.
	Route Route `json:"route,omitempty"`

	// Title is the generated conversation title. Empty until produced.
	Title string `json:"title,omitempty"`

	// Summary is the generated thread summary. Empty until produced.
	Summary string `json:"summary,omitempty"`
}

// LastMessage returns the most recent message, or nil if there are none.
func (s WorkflowState) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

// LastUserMessage returns the most recent user turn, or nil if none exists.
func (s WorkflowState) LastUserMessage() *Message {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return &s.Messages[i]
		}
	}
	return nil
}

// Highlight returns the highlight attachment of the latest user
// message, or nil if the user did not select a region.
func (s WorkflowState) Highlight() *Attachment {
	msg := s.LastUserMessage()
	if msg == nil {
		return nil
	}
	for i := range msg.Attachments {
		if msg.Attachments[i].Kind == AttachmentHighlight {
			return &msg.Attachments[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the state. Stream consumers receive
// cloned values so a later node cannot mutate an already-emitted event.
func (s WorkflowState) Clone() WorkflowState {
	out := s

	if s.Messages != nil {
		out.Messages = make([]Message, len(s.Messages))
		copy(out.Messages, s.Messages)
		for i, m := range s.Messages {
			if m.Attachments != nil {
				out.Messages[i].Attachments = make([]Attachment, len(m.Attachments))
				copy(out.Messages[i].Attachments, m.Attachments)
			}
		}
	}
	if s.Artifact != nil {
		a := s.Artifact.Clone()
		out.Artifact = &a
	}
	if s.ContextDocuments != nil {
		out.ContextDocuments = make([]Document, len(s.ContextDocuments))
		copy(out.ContextDocuments, s.ContextDocuments)
	}
	if s.WebSearchResults != nil {
		out.WebSearchResults = make([]search.Result, len(s.WebSearchResults))
		copy(out.WebSearchResults, s.WebSearchResults)
	}
	if s.ShouldSearch != nil {
		v := *s.ShouldSearch
		out.ShouldSearch = &v
	}
	return out
}
