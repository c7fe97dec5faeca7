package agent

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/canvasflow/pkg/canvas"
	"github.com/randalmurphal/canvasflow/pkg/canvas/schema"
	"github.com/randalmurphal/canvasflow/pkg/canvas/state"
)

// GenerateArtifact creates the first revision of an artifact from the
// conversation, context documents, and any gathered search results.
func (a *Assistant) GenerateArtifact(ctx canvas.Context, s state.WorkflowState) (state.Patch, error) {
	system := a.withFamilyInstruction(fmt.Sprintf(generateSystem,
		renderReflections(a.loadReflections(ctx)),
		renderDocuments(s.ContextDocuments),
		renderSearchResults(s.WebSearchResults)))

	obj, err := a.invokeValidated(ctx, schema.Artifact, system, renderConversation(s.Messages))
	if err != nil {
		return state.Patch{}, fmt.Errorf("generate artifact: %w", err)
	}

	content := contentFromObject(obj, nil)
	base := state.ArtifactV3{}
	if s.Artifact != nil {
		base = *s.Artifact
	}
	artifact := base.Append(content)
	return state.Patch{Artifact: &artifact}, nil
}

// RewriteArtifact replaces the artifact's current content with a new
// revision. Prior revisions remain addressable.
func (a *Assistant) RewriteArtifact(ctx canvas.Context, s state.WorkflowState) (state.Patch, error) {
	if s.Artifact == nil {
		return state.Patch{}, &state.NotFoundError{Resource: "artifact"}
	}
	current, err := s.Artifact.CurrentContent()
	if err != nil {
		return state.Patch{}, err
	}

	system := a.withFamilyInstruction(fmt.Sprintf(rewriteSystem,
		renderReflections(a.loadReflections(ctx)),
		current.ContentTitle(), state.Body(current)))

	obj, err := a.invokeValidated(ctx, schema.RewriteMeta, system, renderConversation(s.Messages))
	if err != nil {
		return state.Patch{}, fmt.Errorf("rewrite artifact: %w", err)
	}

	content := contentFromObject(obj, current)
	artifact := s.Artifact.Append(content)
	return state.Patch{Artifact: &artifact}, nil
}

// UpdateArtifactRegion replaces only the user-highlighted region and
// appends the result as a new revision. The highlight is re-anchored
// against the content current at invocation time; a highlight that no
// longer matches is an error.
func (a *Assistant) UpdateArtifactRegion(ctx canvas.Context, s state.WorkflowState) (state.Patch, error) {
	if s.Artifact == nil {
		return state.Patch{}, &state.NotFoundError{Resource: "artifact"}
	}
	current, err := s.Artifact.CurrentContent()
	if err != nil {
		return state.Patch{}, err
	}
	highlight := s.Highlight()
	if highlight == nil || highlight.Text == "" {
		return state.Patch{}, &state.NotFoundError{Resource: "highlighted region"}
	}

	body := state.Body(current)
	at := strings.Index(body, highlight.Text)
	if at < 0 {
		return state.Patch{}, &state.NotFoundError{Resource: "highlighted region in current content"}
	}

	system := fmt.Sprintf(updateRegionSystem,
		current.ContentTitle(), body, highlight.Text)
	last := s.LastUserMessage()
	prompt := ""
	if last != nil {
		prompt = last.Content
	}

	obj, err := a.invoke(ctx, schema.UpdateRegion, a.withFamilyInstruction(system), prompt)
	if err != nil {
		return state.Patch{}, fmt.Errorf("update region: %w", err)
	}

	updated := body[:at] + schema.Str(obj, "replacement") + body[at+len(highlight.Text):]
	artifact := s.Artifact.Append(rebody(current, updated))
	return state.Patch{Artifact: &artifact}, nil
}

// contentFromObject builds a content variant from validated model
// output. prev, when non-nil, fills fields the model omitted on a
// rewrite (title, language).
func contentFromObject(obj map[string]any, prev state.ArtifactContent) state.ArtifactContent {
	title := schema.Str(obj, "title")
	if title == "" && prev != nil {
		title = prev.ContentTitle()
	}
	body := schema.Str(obj, "artifact")

	if schema.Str(obj, "type") == string(state.ContentTypeCode) {
		language := schema.Str(obj, "language")
		if language == "" {
			if pc, ok := prev.(state.CodeContent); ok {
				language = pc.Language
			} else {
				language = "other"
			}
		}
		return state.CodeContent{Title: title, Language: language, Code: body}
	}
	return state.TextContent{Title: title, FullMarkdown: body}
}

// rebody returns a same-variant copy of c with a new body.
func rebody(c state.ArtifactContent, body string) state.ArtifactContent {
	switch v := c.(type) {
	case state.CodeContent:
		return state.CodeContent{Title: v.Title, Language: v.Language, Code: body}
	case state.TextContent:
		return state.TextContent{Title: v.Title, FullMarkdown: body}
	default:
		return state.TextContent{Title: c.ContentTitle(), FullMarkdown: body}
	}
}
