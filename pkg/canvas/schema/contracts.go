package schema

// SupportedLanguages is the closed language set for code artifacts.
// Anything else must be reported as "other".
var SupportedLanguages = []string{
	"python", "javascript", "typescript", "go", "rust", "java",
	"c", "cpp", "csharp", "php", "ruby", "swift", "kotlin",
	"sql", "html", "css", "shell", "other",
}

// Contract names, used to look up schemas and in error reporting.
const (
	NameArtifact     = "artifact"
	NameRewriteMeta  = "rewrite-meta"
	NameUpdateRegion = "update-region"
	NameGeneralReply = "general-reply"
	NameFollowup     = "followup"
	NameTitle        = "title"
	NameClassify     = "classify"
	NameReflections  = "reflections"
	NameSummary      = "summary"
)

// Artifact is the contract for first-time artifact generation.
var Artifact = Schema{
	Name:        NameArtifact,
	Description: "Generate a new artifact for the user.",
	Fields: []Field{
		{Name: "type", Type: TypeString, Required: true,
			Enum:        []string{"code", "text"},
			Description: "Whether the artifact is code or prose."},
		{Name: "title", Type: TypeString, Required: true,
			Description: "Short descriptive title for the artifact."},
		{Name: "language", Type: TypeString,
			Enum:        SupportedLanguages,
			Description: "Programming language. Required for code artifacts; use \"other\" if unlisted."},
		{Name: "artifact", Type: TypeString, Required: true,
			Description: "The full artifact content. Code only for code artifacts, markdown for text."},
	},
}

// RewriteMeta is the contract for full artifact rewrites. The model
// may change the type, title, and language while producing new full
// content.
var RewriteMeta = Schema{
	Name:        NameRewriteMeta,
	Description: "Rewrite the existing artifact in full.",
	Fields: []Field{
		{Name: "type", Type: TypeString, Required: true,
			Enum:        []string{"code", "text"},
			Description: "Type of the rewritten artifact."},
		{Name: "title", Type: TypeString,
			Description: "New title. Omit to keep the current title."},
		{Name: "language", Type: TypeString,
			Enum:        SupportedLanguages,
			Description: "Language of the rewritten artifact, for code."},
		{Name: "artifact", Type: TypeString, Required: true,
			Description: "The complete rewritten content."},
	},
}

// UpdateRegion is the contract for targeted partial edits.
var UpdateRegion = Schema{
	Name:        NameUpdateRegion,
	Description: "Replace only the highlighted region of the artifact.",
	Fields: []Field{
		{Name: "replacement", Type: TypeString, Required: true,
			Description: "Text that replaces the highlighted region. Do not include surrounding content."},
	},
}

// GeneralReply is the contract for conversational replies that do not
// touch the artifact.
var GeneralReply = Schema{
	Name:        NameGeneralReply,
	Description: "Reply to the user without modifying the artifact.",
	Fields: []Field{
		{Name: "reply", Type: TypeString, Required: true,
			Description: "The conversational reply."},
	},
}

// Followup is the contract for the post-mutation acknowledgment.
var Followup = Schema{
	Name:        NameFollowup,
	Description: "Send a brief followup message about the artifact change.",
	Fields: []Field{
		{Name: "followup", Type: TypeString, Required: true,
			Description: "One or two sentences acknowledging the change and inviting next steps."},
	},
}

// Title is the contract for conversation title generation.
var Title = Schema{
	Name:        NameTitle,
	Description: "Name this conversation.",
	Fields: []Field{
		{Name: "title", Type: TypeString, Required: true,
			Description: "A title of at most six words."},
	},
}

// Classify is the contract for intent classification.
var Classify = Schema{
	Name:        NameClassify,
	Description: "Classify the user's latest message.",
	Fields: []Field{
		{Name: "intent", Type: TypeString, Required: true,
			Enum:        []string{"generate", "rewrite", "update-region", "reply-general"},
			Description: "How the message should be handled."},
		{Name: "shouldSearch", Type: TypeBoolean,
			Description: "Whether web results would materially improve the response."},
	},
}

// Reflections is the contract for persisted session insights.
var Reflections = Schema{
	Name:        NameReflections,
	Description: "Update the assistant's notes about this user.",
	Fields: []Field{
		{Name: "reflections", Type: TypeString, Required: true,
			Description: "The full updated notes, one insight per line. Carry forward anything still relevant."},
	},
}

// Summary is the contract for long-thread summarization.
var Summary = Schema{
	Name:        NameSummary,
	Description: "Summarize the conversation so far.",
	Fields: []Field{
		{Name: "summary", Type: TypeString, Required: true,
			Description: "A compact summary preserving decisions, constraints, and open threads."},
	},
}

// ByName returns the contract with the given name.
// The second return is false for unknown names.
func ByName(name string) (Schema, bool) {
	switch name {
	case NameArtifact:
		return Artifact, true
	case NameRewriteMeta:
		return RewriteMeta, true
	case NameUpdateRegion:
		return UpdateRegion, true
	case NameGeneralReply:
		return GeneralReply, true
	case NameFollowup:
		return Followup, true
	case NameTitle:
		return Title, true
	case NameClassify:
		return Classify, true
	case NameReflections:
		return Reflections, true
	case NameSummary:
		return Summary, true
	default:
		return Schema{}, false
	}
}
