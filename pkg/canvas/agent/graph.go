package agent

import (
	"github.com/randalmurphal/canvasflow/pkg/canvas"
	"github.com/randalmurphal/canvasflow/pkg/canvas/state"
)

// Node identifiers.
const (
	NodeClassify         = "classify-intent"
	NodeWebSearch        = "web-search"
	NodeGenerateArtifact = "generate-artifact"
	NodeRewriteArtifact  = "rewrite-artifact"
	NodeUpdateRegion     = "update-artifact-region"
	NodeReplyGeneral     = "reply-to-general-input"
	NodeFollowup         = "generate-followup"
	NodeReflect          = "reflect-on-session"
	NodeSummarize        = "summarize-thread"
	NodeTitle            = "generate-title"
)

// routeAfterClassify selects the responding node from the classifier's
// decision already in state. A highlighted region takes precedence
// over a full rewrite; an artifact-changing intent without an existing
// artifact falls back to generation. Search only precedes generation,
// and only if no search has run this turn.
func (a *Assistant) routeAfterClassify(ctx canvas.Context, s state.WorkflowState) string {
	hasArtifact := s.Artifact != nil && len(s.Artifact.Contents) > 0

	if s.Route == state.RouteReplyGeneral {
		return NodeReplyGeneral
	}

	if !hasArtifact {
		if s.ShouldSearch != nil && *s.ShouldSearch && s.WebSearchResults == nil {
			return NodeWebSearch
		}
		return NodeGenerateArtifact
	}

	switch s.Route {
	case state.RouteUpdateRegion:
		if s.Highlight() != nil {
			return NodeUpdateRegion
		}
		return NodeRewriteArtifact
	case state.RouteRewrite:
		if s.Highlight() != nil {
			return NodeUpdateRegion
		}
		return NodeRewriteArtifact
	default:
		// "generate" against an existing artifact means a full rewrite:
		// the artifact history stays in one lineage.
		return NodeRewriteArtifact
	}
}

// routeAfterReflect runs the session-maintenance tail: title first if
// the thread is unnamed, then summarization once the thread is long.
func (a *Assistant) routeAfterReflect(ctx canvas.Context, s state.WorkflowState) string {
	if s.Title == "" {
		return NodeTitle
	}
	if len(s.Messages) > a.opts.SummarizeAfter {
		return NodeSummarize
	}
	return canvas.END
}

func (a *Assistant) routeAfterTitle(ctx canvas.Context, s state.WorkflowState) string {
	if len(s.Messages) > a.opts.SummarizeAfter {
		return NodeSummarize
	}
	return canvas.END
}

// BuildGraph assembles and compiles the assistant workflow.
//
// Every turn enters at classification, fans out to exactly one
// responding node (optionally preceded by a web search), then passes
// through the followup and maintenance tail before ending.
func (a *Assistant) BuildGraph() (*canvas.CompiledGraph, error) {
	g := canvas.NewGraph().
		AddNode(NodeClassify, a.ClassifyIntent).
		AddNode(NodeWebSearch, a.WebSearch).
		AddNode(NodeGenerateArtifact, a.GenerateArtifact).
		AddNode(NodeRewriteArtifact, a.RewriteArtifact).
		AddNode(NodeUpdateRegion, a.UpdateArtifactRegion).
		AddNode(NodeReplyGeneral, a.ReplyToGeneralInput).
		AddNode(NodeFollowup, a.GenerateFollowup).
		AddNode(NodeReflect, a.ReflectOnSession).
		AddNode(NodeSummarize, a.SummarizeThread).
		AddNode(NodeTitle, a.GenerateTitle).
		SetEntry(NodeClassify).
		AddConditionalEdge(NodeClassify, a.routeAfterClassify).
		AddEdge(NodeWebSearch, NodeGenerateArtifact).
		AddEdge(NodeGenerateArtifact, NodeFollowup).
		AddEdge(NodeRewriteArtifact, NodeFollowup).
		AddEdge(NodeUpdateRegion, NodeFollowup).
		AddEdge(NodeReplyGeneral, NodeFollowup).
		AddEdge(NodeFollowup, NodeReflect).
		AddConditionalEdge(NodeReflect, a.routeAfterReflect).
		AddConditionalEdge(NodeTitle, a.routeAfterTitle).
		AddEdge(NodeSummarize, canvas.END)

	return g.Compile()
}
