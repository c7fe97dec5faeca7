package llm

import "strings"

// ModelFamily groups models that share prompt-level quirks.
// Family-conditional behavior is table-driven: callers look the family
// up once and consult a configuration table, never string-match model
// names at call sites.
type ModelFamily string

// Known model families.
const (
	FamilyClaude ModelFamily = "claude"
	FamilyGPT    ModelFamily = "gpt"
	FamilyGemini ModelFamily = "gemini"
	FamilyOther  ModelFamily = "other"
)

// familyPrefixes maps model-name prefixes to families.
// First match wins; order is most-specific first.
var familyPrefixes = []struct {
	prefix string
	family ModelFamily
}{
	{"claude", FamilyClaude},
	{"anthropic/", FamilyClaude},
	{"gpt", FamilyGPT},
	{"o1", FamilyGPT},
	{"o3", FamilyGPT},
	{"openai/", FamilyGPT},
	{"gemini", FamilyGemini},
	{"google/", FamilyGemini},
}

// FamilyOf returns the family for a model name.
// Unknown models map to FamilyOther.
func FamilyOf(model string) ModelFamily {
	name := strings.ToLower(strings.TrimSpace(model))
	for _, entry := range familyPrefixes {
		if strings.HasPrefix(name, entry.prefix) {
			return entry.family
		}
	}
	return FamilyOther
}
