package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWorkflowState_LastUserMessage verifies the scan skips assistant turns.
func TestWorkflowState_LastUserMessage(t *testing.T) {
	s := WorkflowState{Messages: []Message{
		{Role: RoleUser, Content: "first"},
		{Role: RoleAssistant, Content: "reply"},
		{Role: RoleUser, Content: "second"},
		{Role: RoleAssistant, Content: "done"},
	}}

	last := s.LastUserMessage()
	require.NotNil(t, last)
	assert.Equal(t, "second", last.Content)
}

// TestWorkflowState_LastUserMessage_None verifies nil for an empty or
// assistant-only thread.
func TestWorkflowState_LastUserMessage_None(t *testing.T) {
	assert.Nil(t, WorkflowState{}.LastUserMessage())

	s := WorkflowState{Messages: []Message{{Role: RoleAssistant, Content: "hi"}}}
	assert.Nil(t, s.LastUserMessage())
}

// TestWorkflowState_Highlight verifies highlight extraction from the
// latest user message.
func TestWorkflowState_Highlight(t *testing.T) {
	s := WorkflowState{Messages: []Message{
		{Role: RoleUser, Content: "fix this", Attachments: []Attachment{
			{Kind: AttachmentDocument, Name: "spec"},
			{Kind: AttachmentHighlight, Text: "func main()"},
		}},
	}}

	h := s.Highlight()
	require.NotNil(t, h)
	assert.Equal(t, "func main()", h.Text)
}

// TestWorkflowState_Highlight_None verifies nil without a highlight
// attachment.
func TestWorkflowState_Highlight_None(t *testing.T) {
	s := WorkflowState{Messages: []Message{
		{Role: RoleUser, Content: "hello"},
	}}
	assert.Nil(t, s.Highlight())
}

// TestWorkflowState_Clone verifies the clone shares nothing mutable
// with the original.
func TestWorkflowState_Clone(t *testing.T) {
	artifact := ArtifactV3{}.Append(TextContent{Title: "v1", FullMarkdown: "one"})
	s := WorkflowState{
		ThreadID: "t1",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
		Artifact: &artifact,
	}

	clone := s.Clone()
	clone.Messages[0].Content = "changed"
	clone.Artifact.CurrentIndex = 99

	assert.Equal(t, "hi", s.Messages[0].Content)
	assert.Equal(t, 1, s.Artifact.CurrentIndex)
}

// TestKnownRoutes covers the closed route set.
func TestKnownRoutes(t *testing.T) {
	routes := KnownRoutes()
	assert.Len(t, routes, 4)
	assert.Contains(t, routes, RouteGenerate)
	assert.Contains(t, routes, RouteRewrite)
	assert.Contains(t, routes, RouteUpdateRegion)
	assert.Contains(t, routes, RouteReplyGeneral)
}
