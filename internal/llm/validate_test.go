package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradeSchema mirrors the shape graders ask for. Each caller passes its own
// name since compiled schemas are cached by name.
func gradeSchema(name string) *Schema {
	return &Schema{
		Name: name,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"is_correct": map[string]any{"type": "boolean"},
				"score":      map[string]any{"type": "number", "minimum": 0, "maximum": 1},
				"feedback":   map[string]any{"type": "string"},
			},
			"required": []any{"is_correct", "score"},
		},
	}
}

func cardSetSchema() *Schema {
	return &Schema{
		Name: "validate-card-set",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"cards": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"question": map[string]any{"type": "string"},
							"type":     map[string]any{"type": "string", "enum": []any{"definition", "recall", "concept"}},
						},
						"required": []any{"question", "type"},
					},
				},
			},
			"required": []any{"cards"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name   string
		schema *Schema
		raw    string
		ok     bool
	}{
		{"grade", gradeSchema("validate-grade"), `{"is_correct": true, "score": 0.75}`, true},
		{"grade with feedback", gradeSchema("validate-grade"), `{"is_correct": false, "score": 0, "feedback": "missing recall"}`, true},
		{"missing required", gradeSchema("validate-grade"), `{"score": 0.5}`, false},
		{"score out of range", gradeSchema("validate-grade"), `{"is_correct": true, "score": 1.5}`, false},
		{"wrong type", gradeSchema("validate-grade"), `{"is_correct": "yes", "score": 1}`, false},
		{"nested cards", cardSetSchema(), `{"cards": [{"question": "What is spacing?", "type": "definition"}]}`, true},
		{"bad enum in array", cardSetSchema(), `{"cards": [{"question": "Q", "type": "essay"}]}`, false},
		{"malformed", gradeSchema("validate-grade"), `{not json}`, false},
		{"empty", gradeSchema("validate-grade"), ``, false},
		{"nil schema accepts anything", nil, `{"anything": "goes"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(tt.schema, json.RawMessage(tt.raw))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var inv *ErrInvalidResponse
			require.True(t, errors.As(err, &inv), "got %T: %v", err, err)
			assert.Equal(t, tt.raw, string(inv.Content))
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n[1, 2]\n```", `[1, 2]`},
		{`Here you go: {"a": {"b": 2}} cheers`, `{"a": {"b": 2}}`},
		{`no json here`, `no json here`},
		{`  padded  `, `padded`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractJSON(tt.in), "input %q", tt.in)
	}
}
