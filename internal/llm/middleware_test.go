package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/logger"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/store"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsEvent(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"ok":true}`),
		Usage:   Usage{InputTokens: 11, OutputTokens: 4},
	})
	p := WithLogging(mock, "ollama", repo, logger.NewNop())

	ctx := WithPurpose(context.Background(), "card-authoring")
	_, err := p.Generate(ctx, Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "segment text"}},
		Schema:   &Schema{Name: "practice-cards", Definition: map[string]any{"type": "object"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	e := repo.events[0]
	if e.Provider != "ollama" || e.Model != "mock" || e.Purpose != "card-authoring" {
		t.Errorf("event = %+v", e)
	}
	if !e.Success || e.InputTokens != 11 || e.OutputTokens != 4 || e.ResponseBody != `{"ok":true}` {
		t.Errorf("event = %+v", e)
	}
	for _, part := range []string{"[system]\nsys", "[user]\nsegment text", "[schema: practice-cards]"} {
		if !strings.Contains(e.RequestBody, part) {
			t.Errorf("request body missing %q:\n%s", part, e.RequestBody)
		}
	}
}

func TestLoggingProvider_RecordsFailureAndIgnoresRepoError(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	p := WithLogging(mock, "openai", repo, nil)

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected provider error to pass through, got %v", err)
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Errorf("event = %+v", repo.events)
	}
	if repo.events[0].Purpose != "unknown" {
		t.Errorf("purpose = %q", repo.events[0].Purpose)
	}
}

func TestDefaultsProvider_FillsUnsetFields(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}, MockResponse{Content: json.RawMessage(`{}`)})
	p := WithDefaults(mock, Defaults{Temperature: 0.1, Seed: 42})

	_, _ = p.Generate(context.Background(), Request{})
	own := 7
	_, _ = p.Generate(context.Background(), Request{Temperature: 0.7, Seed: &own})

	first, second := mock.Calls[0], mock.Calls[1]
	if first.Temperature != 0.1 || first.Seed == nil || *first.Seed != 42 {
		t.Errorf("defaults not applied: %+v", first)
	}
	if second.Temperature != 0.7 || *second.Seed != 7 {
		t.Errorf("explicit values overwritten: %+v", second)
	}
}

type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) ModelID() string { return "blocking" }

func TestDefaultsProvider_Timeout(t *testing.T) {
	p := WithDefaults(blockingProvider{}, Defaults{Timeout: 20 * time.Millisecond})

	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	t.Run("mock", func(t *testing.T) {
		p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "mock" {
			t.Errorf("model = %q", p.ModelID())
		}
	})

	t.Run("ollama stack", func(t *testing.T) {
		cfg := DefaultConfig("ollama")
		cfg.Endpoint.BaseURL = "http://127.0.0.1:11434"
		p, err := NewProvider(context.Background(), cfg, &recordingRepo{}, logger.NewNop())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		d, ok := p.(*DefaultsProvider)
		if !ok {
			t.Fatalf("outer provider = %T, want *DefaultsProvider", p)
		}
		r, ok := d.inner.(*RetryProvider)
		if !ok {
			t.Fatalf("second layer = %T, want *RetryProvider", d.inner)
		}
		if _, ok := r.inner.(*LoggingProvider); !ok {
			t.Fatalf("third layer = %T, want *LoggingProvider", r.inner)
		}
		if p.ModelID() != "qwen3:8b" {
			t.Errorf("model = %q", p.ModelID())
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		if _, err := NewProvider(context.Background(), Config{Provider: "anthropic"}, nil, nil); err == nil {
			t.Fatal("expected error for missing key")
		}
		if _, err := NewProvider(context.Background(), Config{Provider: "nope"}, nil, nil); err == nil {
			t.Fatal("expected error for unknown provider")
		}
	})
}
