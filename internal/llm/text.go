package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// TextOptions configures a plain-text generation.
type TextOptions struct {
	System      string
	MaxTokens   int
	Temperature float64
	Seed        *int
}

// GenerateText sends a single prompt without a schema and returns the
// model's text with any leading think block removed.
func GenerateText(ctx context.Context, p Provider, prompt string, opts TextOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}
	resp, err := p.Generate(ctx, Request{
		System:      opts.System,
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: opts.Temperature,
		Seed:        opts.Seed,
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(StripThinking(decodeText(resp.Content)))
	if text == "" {
		return "", &ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("empty text response")}
	}
	return text, nil
}

// decodeText unwraps content that providers encode as a JSON string. Any
// other content is returned verbatim.
func decodeText(content json.RawMessage) string {
	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}
	return string(content)
}

// StripThinking removes a leading <think>...</think> block. An unterminated
// block drops only its first line.
func StripThinking(text string) string {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	if !strings.HasPrefix(trimmed, thinkOpen) {
		return text
	}
	if _, after, ok := strings.Cut(trimmed, thinkClose); ok {
		return strings.TrimLeft(after, " \t\r\n")
	}
	_, rest, _ := strings.Cut(trimmed, "\n")
	return strings.TrimLeft(rest, " \t\r\n")
}
