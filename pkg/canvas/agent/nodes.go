package agent

import (
	"fmt"

	"github.com/randalmurphal/canvasflow/pkg/canvas"
	"github.com/randalmurphal/canvasflow/pkg/canvas/schema"
	"github.com/randalmurphal/canvasflow/pkg/canvas/search"
	"github.com/randalmurphal/canvasflow/pkg/canvas/state"
)

// ClassifyIntent routes the latest user message. Failure here is
// fatal: every later step depends on the decision.
func (a *Assistant) ClassifyIntent(ctx canvas.Context, s state.WorkflowState) (state.Patch, error) {
	if s.LastUserMessage() == nil {
		return state.Patch{}, fmt.Errorf("classify: no user message in thread %s", s.ThreadID)
	}

	artifactNote := "does not yet contain"
	if s.Artifact != nil && len(s.Artifact.Contents) > 0 {
		artifactNote = "already contains"
	}
	system := fmt.Sprintf(classifySystem, renderConversation(s.Messages), artifactNote)

	obj, err := a.invoke(ctx, schema.Classify, system, s.LastUserMessage().Content)
	if err != nil {
		return state.Patch{}, fmt.Errorf("classify intent: %w", err)
	}

	route := state.Route(schema.Str(obj, "intent"))
	return state.Patch{
		Route:        state.RoutePtr(route),
		ShouldSearch: state.Bool(schema.Flag(obj, "shouldSearch")),
	}, nil
}

// WebSearch gathers web context for the upcoming generation. It never
// fails the run: collaborator errors degrade to an empty, non-nil
// result set so the router knows the search already happened.
func (a *Assistant) WebSearch(ctx canvas.Context, s state.WorkflowState) (state.Patch, error) {
	empty := []search.Result{}

	last := s.LastUserMessage()
	if last == nil {
		return state.Patch{WebSearchResults: &empty}, nil
	}

	searcher := ctx.Search()
	if searcher == nil {
		ctx.Logger().Warn("web search skipped, no searcher configured")
		return state.Patch{WebSearchResults: &empty}, nil
	}

	results, err := searcher.Search(ctx, last.Content, a.opts.SearchLimit)
	if err != nil {
		ctx.Logger().Warn("web search degraded", "error", err)
		return state.Patch{WebSearchResults: &empty}, nil
	}

	results = search.FilterEmpty(results)
	if len(results) > a.opts.SearchLimit {
		results = results[:a.opts.SearchLimit]
	}
	return state.Patch{WebSearchResults: &results}, nil
}

// ReplyToGeneralInput answers conversationally without touching the
// artifact.
func (a *Assistant) ReplyToGeneralInput(ctx canvas.Context, s state.WorkflowState) (state.Patch, error) {
	system := fmt.Sprintf(replySystem,
		renderReflections(a.loadReflections(ctx)),
		artifactSummary(s))

	obj, err := a.invoke(ctx, schema.GeneralReply, system, renderConversation(s.Messages))
	if err != nil {
		return state.Patch{}, fmt.Errorf("general reply: %w", err)
	}

	return state.Patch{Messages: []state.Message{{
		Role:    state.RoleAssistant,
		Content: schema.Str(obj, "reply"),
	}}}, nil
}

// GenerateFollowup acknowledges whatever the preceding node did and
// appends the acknowledgment to the conversation.
func (a *Assistant) GenerateFollowup(ctx canvas.Context, s state.WorkflowState) (state.Patch, error) {
	prompt := fmt.Sprintf("The artifact is now: %s\n\nLatest exchange:\n%s",
		artifactSummary(s), renderConversation(tail(s.Messages, 4)))

	obj, err := a.invoke(ctx, schema.Followup, followupSystem, prompt)
	if err != nil {
		return state.Patch{}, fmt.Errorf("followup: %w", err)
	}

	return state.Patch{Messages: []state.Message{{
		Role:    state.RoleAssistant,
		Content: schema.Str(obj, "followup"),
	}}}, nil
}

// ReflectOnSession distills durable insights about the user and
// persists them for future sessions. Best effort: failures are logged
// and the run continues.
func (a *Assistant) ReflectOnSession(ctx canvas.Context, s state.WorkflowState) (state.Patch, error) {
	memory := ctx.Store()
	if memory == nil {
		ctx.Logger().Debug("reflection skipped, no store configured")
		return state.Patch{}, nil
	}

	system := fmt.Sprintf(reflectSystem, renderReflections(a.loadReflections(ctx)))
	obj, err := a.invoke(ctx, schema.Reflections, system, renderConversation(s.Messages))
	if err != nil {
		ctx.Logger().Warn("reflection skipped", "error", err)
		return state.Patch{}, nil
	}

	notes := schema.Str(obj, "reflections")
	if err := memory.Put(a.reflectionNamespace(), reflectionKey, []byte(notes)); err != nil {
		ctx.Logger().Warn("reflection save failed", "error", err)
	}
	return state.Patch{}, nil
}

// SummarizeThread compresses a long conversation. Best effort.
func (a *Assistant) SummarizeThread(ctx canvas.Context, s state.WorkflowState) (state.Patch, error) {
	obj, err := a.invoke(ctx, schema.Summary, summarizeSystem, renderConversation(s.Messages))
	if err != nil {
		ctx.Logger().Warn("summarization skipped", "error", err)
		return state.Patch{}, nil
	}
	return state.Patch{Summary: state.String(schema.Str(obj, "summary"))}, nil
}

// GenerateTitle names a conversation that does not have a title yet.
// Best effort.
func (a *Assistant) GenerateTitle(ctx canvas.Context, s state.WorkflowState) (state.Patch, error) {
	obj, err := a.invoke(ctx, schema.Title, titleSystem, renderConversation(tail(s.Messages, 6)))
	if err != nil {
		ctx.Logger().Warn("title generation skipped", "error", err)
		return state.Patch{}, nil
	}
	return state.Patch{Title: state.String(schema.Str(obj, "title"))}, nil
}

// tail returns at most n trailing messages.
func tail(messages []state.Message, n int) []state.Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
