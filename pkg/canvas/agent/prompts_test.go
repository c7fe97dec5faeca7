package agent

import (
	"strings"
	"testing"

	"github.com/randalmurphal/canvasflow/pkg/canvas/search"
	"github.com/randalmurphal/canvasflow/pkg/canvas/state"
	"github.com/stretchr/testify/assert"
)

// TestWithFamilyInstruction verifies the per-family prompt additions
// are table-driven off the configured model.
func TestWithFamilyInstruction(t *testing.T) {
	claude := New(Options{Model: "claude-3-7-sonnet"})
	gpt := New(Options{Model: "gpt-4o"})
	other := New(Options{Model: "llama-3-70b"})

	base := "base prompt"
	assert.Contains(t, claude.withFamilyInstruction(base), "no preamble")
	assert.Contains(t, gpt.withFamilyInstruction(base), "every schema field")
	assert.Equal(t, base, other.withFamilyInstruction(base))

	// The base prompt always survives.
	assert.True(t, strings.HasPrefix(claude.withFamilyInstruction(base), base))
}

// TestRenderConversation verifies role-prefixed flattening and the
// empty placeholder.
func TestRenderConversation(t *testing.T) {
	rendered := renderConversation([]state.Message{
		{Role: state.RoleUser, Content: "hi"},
		{Role: state.RoleAssistant, Content: "hello"},
	})
	assert.Equal(t, "user: hi\nassistant: hello", rendered)

	assert.Equal(t, "(none)", renderConversation(nil))
}

// TestRenderDocuments verifies document interpolation.
func TestRenderDocuments(t *testing.T) {
	rendered := renderDocuments([]state.Document{
		{Name: "style guide", Content: "use tabs"},
	})
	assert.Contains(t, rendered, `name="style guide"`)
	assert.Contains(t, rendered, "use tabs")

	assert.Equal(t, "(none)", renderDocuments(nil))
}

// TestRenderSearchResults verifies result interpolation.
func TestRenderSearchResults(t *testing.T) {
	rendered := renderSearchResults([]search.Result{
		{Title: "Go Blog", URL: "https://go.dev/blog", Snippet: "news"},
	})
	assert.Contains(t, rendered, "Go Blog")
	assert.Contains(t, rendered, "https://go.dev/blog")

	assert.Equal(t, "(none)", renderSearchResults(nil))
}

// TestArtifactSummary verifies the one-line description.
func TestArtifactSummary(t *testing.T) {
	assert.Equal(t, "(none)", artifactSummary(state.WorkflowState{}))

	artifact := state.ArtifactV3{}.Append(state.CodeContent{Title: "Snake", Language: "python", Code: "x"})
	summary := artifactSummary(state.WorkflowState{Artifact: &artifact})
	assert.Contains(t, summary, "Snake")
	assert.Contains(t, summary, "code")
	assert.Contains(t, summary, "1")
}
