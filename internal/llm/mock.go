package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockResponse is one scripted reply. Err, when set, is returned instead.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// TextReply scripts a plain text reply, as a backend returns for requests
// without a schema.
func TextReply(text string) MockResponse {
	b, _ := json.Marshal(text)
	return MockResponse{Content: b}
}

// JSONReply scripts a structured reply from any JSON-encodable value.
func JSONReply(v any) MockResponse {
	b, err := json.Marshal(v)
	if err != nil {
		return MockResponse{Err: err}
	}
	return MockResponse{Content: b}
}

// MockProvider plays back scripted replies in order and records every
// request in Calls. Replies are checked against the request schema the
// same way real backends are, so a script can exercise invalid output.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

func NewMockProvider(replies ...MockResponse) *MockProvider {
	return &MockProvider{script: replies}
}

func (m *MockProvider) ModelID() string { return "mock" }

// Generate fails with ErrProviderUnavailable once the script runs out.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.script) == 0 {
		return nil, &ErrProviderUnavailable{Err: errors.New("mock script exhausted")}
	}
	next := m.script[0]
	m.script = m.script[1:]

	if next.Err != nil {
		return nil, next.Err
	}
	if err := validateResponse(req.Schema, next.Content); err != nil {
		return nil, err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", StopReason: "end"}, nil
}

// AddResponse appends to the script.
func (m *MockProvider) AddResponse(r MockResponse) {
	m.mu.Lock()
	m.script = append(m.script, r)
	m.mu.Unlock()
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
