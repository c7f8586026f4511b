// Package card defines the practice item produced by authoring and consumed
// by grading and scheduling.
package card

import (
	"fmt"
	"strings"
)

// Type is the closed set of card kinds.
type Type string

const (
	TypeTerm           Type = "term"
	TypeConcept        Type = "concept"
	TypeCloze          Type = "cloze"
	TypeShortAnswer    Type = "short_answer"
	TypeSingleChoice   Type = "single_choice"
	TypeMultipleChoice Type = "multiple_choice"
)

// Types returns every known card type in declaration order.
func Types() []Type {
	return []Type{
		TypeTerm,
		TypeConcept,
		TypeCloze,
		TypeShortAnswer,
		TypeSingleChoice,
		TypeMultipleChoice,
	}
}

// ParseType maps a string to a known Type. Matching ignores case and
// surrounding whitespace.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Types() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown card type %q", s)
}

// IsOpen reports whether the learner answers in free text.
func (t Type) IsOpen() bool {
	switch t {
	case TypeTerm, TypeConcept, TypeCloze, TypeShortAnswer:
		return true
	default:
		return false
	}
}

// IsChoice reports whether the card presents options.
func (t Type) IsChoice() bool {
	return t == TypeSingleChoice || t == TypeMultipleChoice
}

// Card is a single gradable question/answer unit derived from a segment.
type Card struct {
	ID            string         `json:"id"`
	Type          Type           `json:"card_type"`
	Question      string         `json:"question"`
	Answer        string         `json:"answer"`
	Options       []string       `json:"options,omitempty"`
	SourceID      string         `json:"source_id,omitempty"`
	SourcePage    *int           `json:"source_page,omitempty"`
	SourceSnippet string         `json:"source_snippet,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Sections returns the section path recorded in the card metadata, if any.
// Metadata decoded from JSON carries []any, so both shapes are accepted.
func (c Card) Sections() []string {
	raw, ok := c.Metadata["section"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// IsFallback reports whether the card was produced by the heuristic author.
func (c Card) IsFallback() bool {
	v, _ := c.Metadata["fallback"].(bool)
	return v
}
