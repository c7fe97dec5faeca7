package state

import (
	"encoding/json"
	"fmt"
)

// ContentType discriminates artifact content variants.
type ContentType string

// Artifact content variants.
const (
	ContentTypeCode ContentType = "code"
	ContentTypeText ContentType = "text"
)

// ArtifactContent is one version of the artifact. It is a closed sum:
// the only implementations are CodeContent and TextContent, so a type
// switch over both is exhaustive.
type ArtifactContent interface {
	// ContentIndex returns the 1-based version index.
	ContentIndex() int
	// ContentTitle returns the version's title.
	ContentTitle() string
	// ContentType returns the variant tag.
	ContentType() ContentType

	// withIndex returns a copy with the index set.
	// Keeps index assignment inside Append.
	withIndex(i int) ArtifactContent
}

// CodeContent is a code version of the artifact.
type CodeContent struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	Language string `json:"language"`
	Code     string `json:"code"`
}

// ContentIndex returns the version index.
func (c CodeContent) ContentIndex() int { return c.Index }

// ContentTitle returns the version title.
func (c CodeContent) ContentTitle() string { return c.Title }

// ContentType returns ContentTypeCode.
func (c CodeContent) ContentType() ContentType { return ContentTypeCode }

func (c CodeContent) withIndex(i int) ArtifactContent {
	c.Index = i
	return c
}

// TextContent is a prose version of the artifact.
type TextContent struct {
	Index        int    `json:"index"`
	Title        string `json:"title"`
	FullMarkdown string `json:"fullMarkdown"`
}

// ContentIndex returns the version index.
func (c TextContent) ContentIndex() int { return c.Index }

// ContentTitle returns the version title.
func (c TextContent) ContentTitle() string { return c.Title }

// ContentType returns ContentTypeText.
func (c TextContent) ContentType() ContentType { return ContentTypeText }

func (c TextContent) withIndex(i int) ArtifactContent {
	c.Index = i
	return c
}

// IsCode reports whether the content is the code variant.
func IsCode(c ArtifactContent) bool {
	_, ok := c.(CodeContent)
	return ok
}

// IsText reports whether the content is the text variant.
func IsText(c ArtifactContent) bool {
	_, ok := c.(TextContent)
	return ok
}

// Body returns the editable text of a content version: the code for
// the code variant, the markdown for the text variant.
func Body(c ArtifactContent) string {
	switch v := c.(type) {
	case CodeContent:
		return v.Code
	case TextContent:
		return v.FullMarkdown
	default:
		return ""
	}
}

// NotFoundError indicates an artifact or content lookup failed where
// no fallback applies.
type NotFoundError struct {
	// Resource names what was missing (e.g. "artifact content").
	Resource string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ArtifactV3 is the append-only version history of one artifact.
//
// Contents is never truncated: revisions append a new entry with
// index = max(existing indices) + 1 and indices are never reused or
// renumbered. CurrentIndex references the active version.
type ArtifactV3 struct {
	CurrentIndex int               `json:"currentIndex"`
	Contents     []ArtifactContent `json:"contents"`
}

// Append returns a new ArtifactV3 with the content added as the next
// version and CurrentIndex advanced to it. The content's index field is
// overwritten with max(existing) + 1 (1 for an empty history). Prior
// entries are never mutated; the receiver is left untouched so a caller
// holding the old value still sees the old history.
func (a ArtifactV3) Append(content ArtifactContent) ArtifactV3 {
	next := 1
	for _, c := range a.Contents {
		if c.ContentIndex() >= next {
			next = c.ContentIndex() + 1
		}
	}

	contents := make([]ArtifactContent, len(a.Contents), len(a.Contents)+1)
	copy(contents, a.Contents)
	contents = append(contents, content.withIndex(next))

	return ArtifactV3{
		CurrentIndex: next,
		Contents:     contents,
	}
}

// CurrentContent returns the entry whose index equals CurrentIndex.
//
// If CurrentIndex does not resolve (index drift from concurrent edits)
// the last entry in insertion order is returned instead of failing.
// Returns NotFoundError only when the history is empty.
func (a ArtifactV3) CurrentContent() (ArtifactContent, error) {
	if len(a.Contents) == 0 {
		return nil, &NotFoundError{Resource: "artifact content"}
	}
	for _, c := range a.Contents {
		if c.ContentIndex() == a.CurrentIndex {
			return c, nil
		}
	}
	return a.Contents[len(a.Contents)-1], nil
}

// Clone returns a deep copy. Content variants are value types, so
// copying the slice is sufficient.
func (a ArtifactV3) Clone() ArtifactV3 {
	out := a
	if a.Contents != nil {
		out.Contents = make([]ArtifactContent, len(a.Contents))
		copy(out.Contents, a.Contents)
	}
	return out
}

// contentWire is the serialized form of an ArtifactContent.
type contentWire struct {
	Index        int         `json:"index"`
	Type         ContentType `json:"type"`
	Title        string      `json:"title"`
	Language     string      `json:"language,omitempty"`
	Code         string      `json:"code,omitempty"`
	FullMarkdown string      `json:"fullMarkdown,omitempty"`
}

// MarshalJSON writes the tagged wire form.
func (a ArtifactV3) MarshalJSON() ([]byte, error) {
	wire := struct {
		CurrentIndex int           `json:"currentIndex"`
		Contents     []contentWire `json:"contents"`
	}{
		CurrentIndex: a.CurrentIndex,
		Contents:     make([]contentWire, 0, len(a.Contents)),
	}

	for _, c := range a.Contents {
		switch v := c.(type) {
		case CodeContent:
			wire.Contents = append(wire.Contents, contentWire{
				Index:    v.Index,
				Type:     ContentTypeCode,
				Title:    v.Title,
				Language: v.Language,
				Code:     v.Code,
			})
		case TextContent:
			wire.Contents = append(wire.Contents, contentWire{
				Index:        v.Index,
				Type:         ContentTypeText,
				Title:        v.Title,
				FullMarkdown: v.FullMarkdown,
			})
		default:
			return nil, fmt.Errorf("unknown artifact content type %T", c)
		}
	}

	return json.Marshal(wire)
}

// UnmarshalJSON reads the tagged wire form.
func (a *ArtifactV3) UnmarshalJSON(data []byte) error {
	var wire struct {
		CurrentIndex int           `json:"currentIndex"`
		Contents     []contentWire `json:"contents"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	a.CurrentIndex = wire.CurrentIndex
	a.Contents = make([]ArtifactContent, 0, len(wire.Contents))
	for _, w := range wire.Contents {
		switch w.Type {
		case ContentTypeCode:
			a.Contents = append(a.Contents, CodeContent{
				Index:    w.Index,
				Title:    w.Title,
				Language: w.Language,
				Code:     w.Code,
			})
		case ContentTypeText:
			a.Contents = append(a.Contents, TextContent{
				Index:        w.Index,
				Title:        w.Title,
				FullMarkdown: w.FullMarkdown,
			})
		default:
			return fmt.Errorf("unknown artifact content type %q", w.Type)
		}
	}
	return nil
}
