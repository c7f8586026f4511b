package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// OllamaProvider implements Provider against a local Ollama server.
// Structured output uses Ollama's JSON schema format parameter.
type OllamaProvider struct {
	client *api.Client
	model  string
}

func openOllama(_ context.Context, ep Endpoint) (Provider, error) {
	return NewOllamaProvider(ep)
}

// NewOllamaProvider connects to ep.BaseURL, or to OLLAMA_HOST when it is
// empty. API keys are ignored.
func NewOllamaProvider(ep Endpoint) (*OllamaProvider, error) {
	host := envconfig.Host()
	if ep.BaseURL != "" {
		u, err := url.Parse(ep.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse ollama host %q: %w", ep.BaseURL, err)
		}
		host = u
	}
	model := ep.Model
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaProvider{client: api.NewClient(host, http.DefaultClient), model: model}, nil
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	stream := false
	chatReq := &api.ChatRequest{
		Model:    p.model,
		Messages: buildOllamaMessages(req),
		Stream:   &stream,
		Options:  ollamaOptions(req),
	}
	if req.Schema != nil {
		schemaBytes, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal schema: %w", err)
		}
		chatReq.Format = json.RawMessage(schemaBytes)
	}

	var (
		text strings.Builder
		last api.ChatResponse
	)
	err := p.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		text.WriteString(resp.Message.Content)
		last = resp
		return nil
	})
	if err != nil {
		return nil, mapOllamaError(err)
	}

	if last.DoneReason == "length" {
		return nil, &ErrMaxTokensExceeded{Content: json.RawMessage(text.String())}
	}

	content, err := finalizeContent(req.Schema, text.String())
	if err != nil {
		return nil, err
	}

	model := last.Model
	if model == "" {
		model = p.model
	}
	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  last.PromptEvalCount,
			OutputTokens: last.EvalCount,
			TotalTokens:  last.PromptEvalCount + last.EvalCount,
		},
		Model:      model,
		StopReason: "end",
	}, nil
}

func (p *OllamaProvider) ModelID() string {
	return p.model
}

func buildOllamaMessages(req Request) []api.Message {
	var messages []api.Message
	if req.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, api.Message{Role: string(m.Role), Content: m.Content})
	}
	return messages
}

func ollamaOptions(req Request) map[string]any {
	opts := map[string]any{
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		opts["num_predict"] = req.MaxTokens
	}
	if req.Seed != nil {
		opts["seed"] = *req.Seed
	}
	return opts
}

func mapOllamaError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case statusErr.StatusCode == http.StatusNotFound, statusErr.StatusCode == http.StatusBadRequest:
			return &ErrInvalidResponse{Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}
