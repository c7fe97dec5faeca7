package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestByName verifies every declared contract resolves by name.
func TestByName(t *testing.T) {
	names := []string{
		NameArtifact, NameRewriteMeta, NameUpdateRegion, NameGeneralReply,
		NameFollowup, NameTitle, NameClassify, NameReflections, NameSummary,
	}
	for _, name := range names {
		s, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, s.Name)
	}

	_, ok := ByName("nonsense")
	assert.False(t, ok)
}

// TestArtifactContract_RejectsUnknownLanguage verifies the language
// enum is closed.
func TestArtifactContract_RejectsUnknownLanguage(t *testing.T) {
	_, err := Artifact.Validate([]byte(`{"type":"code","title":"t","language":"cobol","artifact":"x"}`))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "language", vErr.Field)
}

// TestArtifactContract_TextWithoutLanguage verifies language is
// optional for text artifacts.
func TestArtifactContract_TextWithoutLanguage(t *testing.T) {
	obj, err := Artifact.Validate([]byte(`{"type":"text","title":"Essay","artifact":"# Essay"}`))
	require.NoError(t, err)
	assert.Equal(t, "text", Str(obj, "type"))
}

// TestClassifyContract_IntentEnum verifies the intent set matches the
// router's expectations.
func TestClassifyContract_IntentEnum(t *testing.T) {
	for _, intent := range []string{"generate", "rewrite", "update-region", "reply-general"} {
		_, err := Classify.Validate([]byte(`{"intent":"` + intent + `","shouldSearch":false}`))
		assert.NoError(t, err, intent)
	}

	_, err := Classify.Validate([]byte(`{"intent":"delete"}`))
	assert.Error(t, err)
}
