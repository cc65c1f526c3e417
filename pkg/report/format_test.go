package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMessage_Keywords(t *testing.T) {
	cases := []struct {
		name string
		node FailureNode
		want string
	}{
		{
			name: "required",
			node: FailureNode{Keyword: "required", Args: map[string]any{"missing": []string{"currency", "supplier"}}},
			want: "Missing required property: currency, supplier",
		},
		{
			name: "type",
			node: FailureNode{Keyword: "type", Args: map[string]any{"expected": "string", "used": "number"}},
			want: `Expected type "string", got "number"`,
		},
		{
			name: "type with several expected types",
			node: FailureNode{Keyword: "type", Args: map[string]any{"expected": []string{"string", "null"}, "used": "object"}},
			want: `Expected type "string or null", got "object"`,
		},
		{
			name: "additionalProperties",
			node: FailureNode{Keyword: "additionalProperties", Args: map[string]any{"properties": []string{"foo", "bar"}}},
			want: "Unknown properties: foo, bar",
		},
		{
			name: "minLength",
			node: FailureNode{Keyword: "minLength", Args: map[string]any{"min": 3}},
			want: "Must be at least 3 characters",
		},
		{
			name: "maxLength",
			node: FailureNode{Keyword: "maxLength", Args: map[string]any{"max": 32}},
			want: "Must be at most 32 characters",
		},
		{
			name: "minimum",
			node: FailureNode{Keyword: "minimum", Args: map[string]any{"min": json.Number("0")}},
			want: "Must be at least 0",
		},
		{
			name: "maximum",
			node: FailureNode{Keyword: "maximum", Args: map[string]any{"max": 99.5}},
			want: "Must be at most 99.5",
		},
		{
			name: "pattern",
			node: FailureNode{Keyword: "pattern"},
			want: "Value does not match the required pattern",
		},
		{
			name: "format",
			node: FailureNode{Keyword: "format", Args: map[string]any{"format": "date"}},
			want: "Value is not a valid date",
		},
		{
			name: "const string",
			node: FailureNode{Keyword: "const", Args: map[string]any{"expected": "EUR"}},
			want: "Value must be: EUR",
		},
		{
			name: "const structured",
			node: FailureNode{Keyword: "const", Args: map[string]any{"expected": map[string]any{"a": 1}}},
			want: `Value must be: {"a":1}`,
		},
		{
			name: "enum",
			node: FailureNode{Keyword: "enum", Args: map[string]any{"expected": []any{"standard", 1, true}}},
			want: "Value must be one of: standard, 1, true",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatMessage(&tc.node))
		})
	}
}

func TestFormatMessage_Fallback(t *testing.T) {
	t.Run("unknown keyword uses evaluator message", func(t *testing.T) {
		n := &FailureNode{Keyword: "multipleOf", Message: "7 is not multipleOf 2"}
		assert.Equal(t, "7 is not multipleOf 2", formatMessage(n))
	})

	t.Run("missing args use evaluator message", func(t *testing.T) {
		n := &FailureNode{Keyword: "required", Message: "missing properties: 'name'"}
		assert.Equal(t, "missing properties: 'name'", formatMessage(n))
	})

	t.Run("never empty", func(t *testing.T) {
		assert.Equal(t, `Validation failed for keyword "uniqueItems"`, formatMessage(&FailureNode{Keyword: "uniqueItems"}))
		assert.Equal(t, "Validation failed", formatMessage(&FailureNode{}))
	})
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "plain", stringify("plain"))
	assert.Equal(t, "12.50", stringify(json.Number("12.50")))
	assert.Equal(t, "true", stringify(true))
	assert.Equal(t, "null", stringify(nil))
	assert.Equal(t, `["a","b"]`, stringify([]string{"a", "b"}))
}
