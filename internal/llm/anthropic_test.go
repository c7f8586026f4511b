package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anthropicServer serves reply as a Messages API response and captures the
// decoded request body.
func anthropicServer(t *testing.T, status int, reply map[string]any, captured *map[string]any) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{client: &client, model: "claude-haiku-4-5-20251001"}
}

func anthropicMessage(stop string, blocks ...string) map[string]any {
	content := make([]map[string]any, 0, len(blocks))
	for _, b := range blocks {
		content = append(content, map[string]any{"type": "text", "text": b})
	}
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     content,
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func anthropicError(kind string) map[string]any {
	return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": kind}}
}

func TestAnthropicProvider_StructuredOutput(t *testing.T) {
	var body map[string]any
	p := anthropicServer(t, http.StatusOK,
		anthropicMessage("end_turn", `{"is_correct": true,`, ` "score": 0.9, "feedback": "ok"}`), &body)

	resp, err := p.Generate(context.Background(), Request{
		System:      "You are a concise assistant.",
		Messages:    []Message{{Role: RoleUser, Content: "Grade this answer."}, {Role: RoleAssistant, Content: "{"}},
		MaxTokens:   256,
		Temperature: 0.1,
		Schema:      gradeSchema("anthropic-grade"),
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"is_correct": true, "score": 0.9, "feedback": "ok"}`, string(resp.Content))
	assert.Equal(t, 50, resp.Usage.InputTokens)
	assert.Equal(t, 80, resp.Usage.TotalTokens)
	assert.Equal(t, "end", resp.StopReason)

	assert.Equal(t, "claude-haiku-4-5-20251001", body["model"])
	assert.InDelta(t, 0.1, body["temperature"], 1e-9)
	msgs, _ := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "assistant", msgs[1].(map[string]any)["role"])
	assert.Contains(t, body, "output_config")
}

func TestAnthropicProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  map[string]any
		check  func(t *testing.T, err error)
	}{
		{"rate limit", http.StatusTooManyRequests, anthropicError("rate_limit_error"), func(t *testing.T, err error) {
			var rl *ErrRateLimit
			assert.True(t, errors.As(err, &rl), "got %T", err)
		}},
		{"server error", http.StatusInternalServerError, anthropicError("api_error"), func(t *testing.T, err error) {
			var unavail *ErrProviderUnavailable
			assert.True(t, errors.As(err, &unavail), "got %T", err)
		}},
		{"bad request", http.StatusBadRequest, anthropicError("invalid_request_error"), func(t *testing.T, err error) {
			var inv *ErrInvalidResponse
			assert.True(t, errors.As(err, &inv), "got %T", err)
		}},
		{"truncated", http.StatusOK, anthropicMessage("max_tokens", `{"cards": [`), func(t *testing.T, err error) {
			var mt *ErrMaxTokensExceeded
			require.True(t, errors.As(err, &mt), "got %T", err)
			assert.Equal(t, `{"cards": [`, string(mt.Content))
		}},
		{"no text", http.StatusOK, anthropicMessage("end_turn"), func(t *testing.T, err error) {
			var inv *ErrInvalidResponse
			assert.True(t, errors.As(err, &inv), "got %T", err)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := anthropicServer(t, tt.status, tt.reply, nil)
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				MaxTokens: 100,
			})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4-20250514", resolveModel("claude-sonnet", anthropicModels))
	assert.Equal(t, "claude-haiku-4-5-20251001", resolveModel("claude-haiku", anthropicModels))
	assert.Equal(t, "claude-opus-4-1", resolveModel("claude-opus-4-1", anthropicModels))
	assert.Equal(t, "claude-haiku-4-5-20251001", (&AnthropicProvider{model: "claude-haiku-4-5-20251001"}).ModelID())
}
