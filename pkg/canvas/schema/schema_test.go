package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{
	Name:        "test",
	Description: "test contract",
	Fields: []Field{
		{Name: "kind", Type: TypeString, Required: true, Enum: []string{"a", "b"}},
		{Name: "body", Type: TypeString, Required: true},
		{Name: "note", Type: TypeString},
		{Name: "flag", Type: TypeBoolean},
		{Name: "count", Type: TypeNumber},
	},
}

// TestSchema_Validate_Valid verifies a conforming object passes and
// decodes.
func TestSchema_Validate_Valid(t *testing.T) {
	obj, err := testSchema.Validate([]byte(`{"kind":"a","body":"hello","flag":true,"count":3}`))
	require.NoError(t, err)

	assert.Equal(t, "a", Str(obj, "kind"))
	assert.Equal(t, "hello", Str(obj, "body"))
	assert.True(t, Flag(obj, "flag"))
}

// TestSchema_Validate_MissingRequired verifies a missing required
// field is rejected with field context.
func TestSchema_Validate_MissingRequired(t *testing.T) {
	_, err := testSchema.Validate([]byte(`{"kind":"a"}`))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "test", vErr.Schema)
	assert.Equal(t, "body", vErr.Field)
	assert.Equal(t, "required field missing", vErr.Reason)
}

// TestSchema_Validate_EmptyRequiredString verifies an empty required
// string is rejected, not defaulted.
func TestSchema_Validate_EmptyRequiredString(t *testing.T) {
	_, err := testSchema.Validate([]byte(`{"kind":"a","body":""}`))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "body", vErr.Field)
	assert.Equal(t, "required field empty", vErr.Reason)
}

// TestSchema_Validate_EnumViolation verifies values outside the closed
// set are rejected.
func TestSchema_Validate_EnumViolation(t *testing.T) {
	_, err := testSchema.Validate([]byte(`{"kind":"c","body":"x"}`))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "kind", vErr.Field)
}

// TestSchema_Validate_TypeMismatch covers mistyped string, boolean,
// and number fields.
func TestSchema_Validate_TypeMismatch(t *testing.T) {
	testCases := []struct {
		name  string
		raw   string
		field string
	}{
		{"number for string", `{"kind":"a","body":7}`, "body"},
		{"string for boolean", `{"kind":"a","body":"x","flag":"yes"}`, "flag"},
		{"string for number", `{"kind":"a","body":"x","count":"many"}`, "count"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := testSchema.Validate([]byte(tc.raw))
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

// TestSchema_Validate_RepairsSloppyJSON verifies model output with
// single quotes and trailing commas is repaired before validation.
func TestSchema_Validate_RepairsSloppyJSON(t *testing.T) {
	obj, err := testSchema.Validate([]byte(`{'kind': 'b', 'body': 'hi',}`))
	require.NoError(t, err)
	assert.Equal(t, "b", Str(obj, "kind"))
	assert.Equal(t, "hi", Str(obj, "body"))
}

// TestSchema_Validate_UnrepairableJSON verifies hopeless input yields
// a validation error, not a panic.
func TestSchema_Validate_UnrepairableJSON(t *testing.T) {
	_, err := testSchema.Validate([]byte(`not even close [[[`))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "test", vErr.Schema)
	assert.Empty(t, vErr.Field)
}

// TestSchema_Validate_OptionalMissing verifies optional fields may be
// absent.
func TestSchema_Validate_OptionalMissing(t *testing.T) {
	obj, err := testSchema.Validate([]byte(`{"kind":"a","body":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "", Str(obj, "note"))
	assert.False(t, Flag(obj, "flag"))
}

// TestSchema_Parameters verifies the exported JSON Schema shape.
func TestSchema_Parameters(t *testing.T) {
	var params map[string]any
	require.NoError(t, json.Unmarshal(testSchema.Parameters(), &params))

	assert.Equal(t, "object", params["type"])

	props, ok := params["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "kind")
	assert.Contains(t, props, "count")

	required, ok := params["required"].([]any)
	require.True(t, ok)
	assert.Contains(t, required, "kind")
	assert.Contains(t, required, "body")
	assert.NotContains(t, required, "note")
}
