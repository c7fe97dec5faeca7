package agent

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/canvasflow/pkg/canvas/llm"
	"github.com/randalmurphal/canvasflow/pkg/canvas/search"
	"github.com/randalmurphal/canvasflow/pkg/canvas/state"
)

// System prompt templates. Each %s slot is filled by the render
// helpers below; empty sections are interpolated as "(none)" so the
// model never sees a dangling tag.
const (
	classifySystem = `You route messages in a collaborative editing session. Classify the user's latest message:
- "generate": the user wants a new artifact created.
- "rewrite": the user wants the whole existing artifact changed.
- "update-region": the user wants only a selected part of the artifact changed.
- "reply-general": the message needs a conversational answer, not an artifact change.
Also decide whether current web information would materially improve the response.

<conversation>
%s
</conversation>

The session %s an artifact.`

	generateSystem = `You are a skilled writer and programmer collaborating with a user on a single shared artifact. Produce exactly what the user asked for, complete and self-contained. Code artifacts contain only code; text artifacts contain markdown.

<reflections>
%s
</reflections>

<documents>
%s
</documents>

<search-results>
%s
</search-results>`

	rewriteSystem = `You are revising a shared artifact. Produce the complete new content; never a diff or a fragment. Preserve everything the user did not ask to change.

<reflections>
%s
</reflections>

<current-artifact title=%q>
%s
</current-artifact>`

	updateRegionSystem = `You are editing one selected region of a shared artifact. Produce only the replacement for the highlighted text. It must read naturally in place; do not repeat the surrounding content.

<current-artifact title=%q>
%s
</current-artifact>

<highlighted>
%s
</highlighted>`

	replySystem = `You are a collaborative assistant in an editing session. Answer the user's message conversationally. Do not produce or modify any artifact.

<reflections>
%s
</reflections>

<artifact-summary>
%s
</artifact-summary>`

	followupSystem = `The artifact was just changed on the user's behalf. Write a brief followup: acknowledge what changed and invite the next step. One or two sentences, no code.`

	reflectSystem = `You maintain the assistant's running notes about this user: style preferences, recurring constraints, facts worth remembering. Merge new insights from the conversation into the existing notes. Keep them terse, one insight per line, and drop anything obsolete.

<existing-notes>
%s
</existing-notes>`

	summarizeSystem = `Summarize the conversation so far into a compact brief a collaborator could resume from. Preserve decisions, constraints, and unresolved questions; drop pleasantries.`

	titleSystem = `Name this conversation. At most six words, no quotes, no trailing punctuation.`
)

// familyInstructions holds per-family additions to artifact prompts.
// Families absent from the table get no extra instruction.
var familyInstructions = map[llm.ModelFamily]string{
	llm.FamilyClaude: "Produce the structured output directly, with no preamble or commentary before it.",
	llm.FamilyGPT:    "Return every schema field, including optional ones you leave empty.",
	llm.FamilyGemini: "Keep string fields free of markdown fences; the artifact field carries raw content.",
}

// withFamilyInstruction appends the model-family instruction, if any.
func (a *Assistant) withFamilyInstruction(system string) string {
	extra := familyInstructions[llm.FamilyOf(a.opts.Model)]
	if extra == "" {
		return system
	}
	return system + "\n\n" + extra
}

const emptySection = "(none)"

// renderConversation flattens messages into role-prefixed lines.
func renderConversation(messages []state.Message) string {
	if len(messages) == 0 {
		return emptySection
	}
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", m.Role, m.Content)
	}
	return b.String()
}

func renderDocuments(docs []state.Document) string {
	if len(docs) == 0 {
		return emptySection
	}
	var b strings.Builder
	for i, d := range docs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "<document name=%q>\n%s\n</document>", d.Name, d.Content)
	}
	return b.String()
}

func renderSearchResults(results []search.Result) string {
	if len(results) == 0 {
		return emptySection
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s (%s): %s", r.Title, r.URL, r.Snippet)
	}
	return b.String()
}

func renderReflections(notes string) string {
	if strings.TrimSpace(notes) == "" {
		return emptySection
	}
	return notes
}

// artifactSummary is a one-line description of the current artifact
// for prompts that must not include its full content.
func artifactSummary(s state.WorkflowState) string {
	if s.Artifact == nil || len(s.Artifact.Contents) == 0 {
		return emptySection
	}
	current, err := s.Artifact.CurrentContent()
	if err != nil {
		return emptySection
	}
	return fmt.Sprintf("%q (%s, revision %d)", current.ContentTitle(), current.ContentType(), current.ContentIndex())
}
