package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

var openaiModels = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
	"qwen-remote": "qwen3-next-80b-a3b-instruct",
}

// OpenAIProvider speaks the chat completions protocol. Besides OpenAI it
// serves OpenRouter and self-hosted compatible servers through BaseURL.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	// strict selects json_schema output. Compatible servers often only
	// accept json_object, so the schema goes into the prompt instead.
	strict bool
}

func openOpenAI(_ context.Context, ep Endpoint) (Provider, error) {
	return NewOpenAIProvider(ep)
}

func openOpenRouter(_ context.Context, ep Endpoint) (Provider, error) {
	return NewOpenRouterProvider(ep)
}

// NewOpenAIProvider needs an API key unless BaseURL points elsewhere.
func NewOpenAIProvider(ep Endpoint) (*OpenAIProvider, error) {
	if ep.APIKey == "" && ep.BaseURL == "" {
		return nil, errors.New("openai API key is required")
	}
	return newChatProvider(ep, ep.BaseURL == "" || strings.Contains(ep.BaseURL, "openai.com")), nil
}

// NewOpenRouterProvider targets OpenRouter, whose model names pass through
// unchanged.
func NewOpenRouterProvider(ep Endpoint) (*OpenAIProvider, error) {
	if ep.APIKey == "" {
		return nil, errors.New("openrouter API key is required")
	}
	if ep.BaseURL == "" {
		ep.BaseURL = openRouterBaseURL
	}
	return newChatProvider(ep, false), nil
}

func newChatProvider(ep Endpoint, strict bool) *OpenAIProvider {
	cc := openai.DefaultConfig(ep.APIKey)
	if ep.BaseURL != "" {
		cc.BaseURL = strings.TrimRight(ep.BaseURL, "/")
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cc),
		model:  resolveModel(ep.Model, openaiModels),
		strict: strict,
	}
}

func (p *OpenAIProvider) ModelID() string { return p.model }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chat, err := p.chatRequest(req)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: errors.New("no choices in chat completion")}
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		return nil, &ErrMaxTokensExceeded{Content: []byte(choice.Message.Content)}
	}
	content, err := finalizeContent(req.Schema, choice.Message.Content)
	if err != nil {
		return nil, err
	}
	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Model:      resp.Model,
		StopReason: "end",
	}, nil
}

func (p *OpenAIProvider) chatRequest(req Request) (openai.ChatCompletionRequest, error) {
	chat := openai.ChatCompletionRequest{
		Model:               p.model,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
		Seed:                req.Seed,
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, chatMessage(openai.ChatMessageRoleSystem, req.System))
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		chat.Messages = append(chat.Messages, chatMessage(role, m.Content))
	}
	if req.Schema == nil {
		return chat, nil
	}

	def, err := json.Marshal(req.Schema.Definition)
	if err != nil {
		return chat, fmt.Errorf("marshal schema %s: %w", req.Schema.Name, err)
	}
	if p.strict {
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: json.RawMessage(def),
				Strict: true,
			},
		}
		return chat, nil
	}
	chat.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	chat.Messages = append(chat.Messages,
		chatMessage(openai.ChatMessageRoleSystem, "Respond with a JSON object matching this schema:\n"+string(def)))
	return chat, nil
}

func chatMessage(role, content string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: role, Content: content}
}

func mapOpenAIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case http.StatusBadRequest:
			return &ErrInvalidResponse{Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}
