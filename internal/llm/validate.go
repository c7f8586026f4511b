package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// finalizeContent turns a backend's text into Response content. With a
// schema the text must hold JSON that validates; a markdown fence, a think
// block or surrounding prose is cut away first. Without a schema the text
// is wrapped as a JSON string.
func finalizeContent(schema *Schema, text string) (json.RawMessage, error) {
	if schema == nil {
		b, err := json.Marshal(text)
		if err != nil {
			return nil, fmt.Errorf("encode text content: %w", err)
		}
		return b, nil
	}
	content := json.RawMessage(extractJSON(StripThinking(text)))
	if err := validateResponse(schema, content); err != nil {
		return nil, err
	}
	return content, nil
}

// extractJSON returns the outermost object or array in text. Text without
// one is returned trimmed.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "```"); ok {
		rest = strings.TrimPrefix(rest, "json")
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), "```"))
	}
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	closer := byte('}')
	if text[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end < start {
		return text
	}
	return text[start : end+1]
}

// validateResponse checks raw against schema. A nil schema accepts
// anything. Failures are *ErrInvalidResponse carrying raw.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	invalid := func(format string, args ...any) error {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf(format, args...)}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return invalid("invalid JSON: %w", err)
	}
	compiled, err := compiledSchemas.get(schema)
	if err != nil {
		return invalid("compile schema %q: %w", schema.Name, err)
	}
	if err := compiled.Validate(doc); err != nil {
		return invalid("schema %q: %w", schema.Name, err)
	}
	return nil
}

// schemaSet compiles each schema once. Schemas are keyed by name, so a name
// must always denote the same definition.
type schemaSet struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

var compiledSchemas = &schemaSet{compiled: make(map[string]*jsonschema.Schema)}

func (s *schemaSet) get(schema *Schema) (*jsonschema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.compiled[schema.Name]; ok {
		return c, nil
	}

	// Round-trip through JSON so the compiler sees plain decoded values.
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, err
	}
	url := "mem://schemas/" + schema.Name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, err
	}
	c, err := compiler.Compile(url)
	if err != nil {
		return nil, err
	}
	s.compiled[schema.Name] = c
	return c, nil
}
