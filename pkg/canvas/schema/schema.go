// Package schema declares the named output contracts model tool calls
// must satisfy, and validates candidate tool-call arguments against
// them. Field descriptions exist only for prompting; validation checks
// presence, type, and enum membership.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// FieldType is the expected JSON type of a schema field.
type FieldType string

// Supported field types.
const (
	TypeString  FieldType = "string"
	TypeBoolean FieldType = "boolean"
	TypeNumber  FieldType = "number"
)

// Field declares one named field of a flat output contract.
type Field struct {
	// Name is the JSON key.
	Name string
	// Type is the expected JSON type.
	Type FieldType
	// Required rejects output that omits the field or leaves a
	// required string empty.
	Required bool
	// Enum restricts string values to the given set when non-empty.
	Enum []string
	// Description is interpolated into prompts. It carries no
	// validation semantics.
	Description string
}

// Schema is a named, flat output contract.
type Schema struct {
	Name        string
	Description string
	Fields      []Field
}

// ValidationError reports which field of which contract a candidate
// object violated.
type ValidationError struct {
	// Schema is the contract name.
	Schema string
	// Field is the offending field, empty for malformed JSON.
	Field string
	// Reason describes the violation.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema %s: %s", e.Schema, e.Reason)
	}
	return fmt.Sprintf("schema %s: field %q: %s", e.Schema, e.Field, e.Reason)
}

// Parameters returns the contract as a JSON Schema object suitable for
// a tool definition.
func (s Schema) Parameters() json.RawMessage {
	type prop struct {
		Type        string   `json:"type"`
		Description string   `json:"description,omitempty"`
		Enum        []string `json:"enum,omitempty"`
	}

	properties := make(map[string]prop, len(s.Fields))
	required := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		properties[f.Name] = prop{
			Type:        string(f.Type),
			Description: f.Description,
			Enum:        f.Enum,
		}
		if f.Required {
			required = append(required, f.Name)
		}
	}

	out, err := json.Marshal(map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	})
	if err != nil {
		// Marshaling a map of plain structs cannot fail.
		panic(err)
	}
	return out
}

// Validate checks raw tool-call arguments against the contract and
// returns the decoded object. Malformed JSON is repaired once before
// being rejected. Partial tool calls (missing required fields) are
// rejected rather than defaulted, because downstream nodes assume
// validated shape.
func (s Schema) Validate(raw []byte) (map[string]any, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, &ValidationError{Schema: s.Name, Reason: err.Error()}
	}

	for _, f := range s.Fields {
		value, present := obj[f.Name]
		if !present || value == nil {
			if f.Required {
				return nil, &ValidationError{
					Schema: s.Name,
					Field:  f.Name,
					Reason: "required field missing",
				}
			}
			continue
		}

		switch f.Type {
		case TypeString:
			str, ok := value.(string)
			if !ok {
				return nil, &ValidationError{
					Schema: s.Name,
					Field:  f.Name,
					Reason: fmt.Sprintf("expected string, got %T", value),
				}
			}
			if f.Required && str == "" {
				return nil, &ValidationError{
					Schema: s.Name,
					Field:  f.Name,
					Reason: "required field empty",
				}
			}
			if len(f.Enum) > 0 && !contains(f.Enum, str) {
				return nil, &ValidationError{
					Schema: s.Name,
					Field:  f.Name,
					Reason: fmt.Sprintf("value %q not in %v", str, f.Enum),
				}
			}
		case TypeBoolean:
			if _, ok := value.(bool); !ok {
				return nil, &ValidationError{
					Schema: s.Name,
					Field:  f.Name,
					Reason: fmt.Sprintf("expected boolean, got %T", value),
				}
			}
		case TypeNumber:
			if _, ok := value.(float64); !ok {
				return nil, &ValidationError{
					Schema: s.Name,
					Field:  f.Name,
					Reason: fmt.Sprintf("expected number, got %T", value),
				}
			}
		}
	}

	return obj, nil
}

// decodeObject unmarshals raw into a JSON object, repairing sloppy
// model output (single quotes, trailing commas, fences) on a first
// failure.
func decodeObject(raw []byte) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj, nil
	}

	repaired, err := jsonrepair.JSONRepair(string(raw))
	if err != nil {
		return nil, fmt.Errorf("malformed JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
		return nil, fmt.Errorf("malformed JSON after repair: %v", err)
	}
	return obj, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Str extracts a string field from a validated object.
// Missing or mistyped values return the empty string; validation has
// already enforced required fields.
func Str(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// Flag extracts a boolean field from a validated object.
func Flag(obj map[string]any, key string) bool {
	b, _ := obj[key].(bool)
	return b
}
