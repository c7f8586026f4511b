// Package llm is the language-model boundary: card authoring, answer
// grading and teaching notes all go through a Provider. Backends are
// wrapped by middleware that fills defaults, retries transient failures and
// records every call as an event.
package llm

import (
	"context"
	"encoding/json"
)

type Provider interface {
	// Generate runs one completion. When req.Schema is set the returned
	// Content is JSON that validates against it; otherwise it is the
	// reply text encoded as a JSON string.
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

type Request struct {
	System string
	// Messages are usually a single user turn. A trailing assistant turn
	// acts as a prefill on backends that honor it.
	Messages []Message
	Schema   *Schema

	MaxTokens int
	// Temperature zero means unset; DefaultsProvider fills it.
	Temperature float64
	// Seed is nil when unset. Backends without seeded sampling ignore it.
	Seed *int
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Schema is a named JSON Schema. The name doubles as the structured output
// name on backends that want one and as the compile cache key.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage
	// Model is the model that served the call, which may differ from
	// ModelID when a backend resolves aliases.
	Model string
	// StopReason is "end" for every successful response; truncation is
	// reported as ErrMaxTokensExceeded instead.
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Call purposes recorded on every LLM event.
const (
	PurposeCardAuthoring = "card-authoring"
	PurposeAnswerGrading = "answer-grading"
	PurposeTeachingNote  = "teaching-note"
)

type purposeKey struct{}

// WithPurpose labels calls made with ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
