package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/logger"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/store"
)

// LoggingProvider records every request as an LLM event. Recording failures
// are logged and never fail the request.
type LoggingProvider struct {
	inner    Provider
	provider string
	repo     store.EventRepo
	log      *logger.Logger
}

// WithLogging wraps p so each call is appended to repo under the given
// provider name.
func WithLogging(p Provider, provider string, repo store.EventRepo, log *logger.Logger) Provider {
	if log == nil {
		log = logger.NewNop()
	}
	return &LoggingProvider{inner: p, provider: provider, repo: repo, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	began := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	rec := l.record(ctx, req, resp, err, time.Since(began))

	if appendErr := l.repo.AppendLLMRequest(ctx, rec); appendErr != nil {
		l.log.Warn("llm event not recorded", "purpose", rec.Purpose, "error", appendErr)
	}
	l.log.Debug("llm call",
		"provider", rec.Provider,
		"model", rec.Model,
		"purpose", rec.Purpose,
		"latency_ms", rec.LatencyMs,
		"ok", rec.Success,
	)
	return resp, err
}

// record builds the event for one call. The reported model wins over the
// configured one when the backend returns it.
func (l *LoggingProvider) record(ctx context.Context, req Request, resp *Response, err error, took time.Duration) store.LLMRequestEventData {
	rec := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   took.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if err != nil {
		rec.ErrorMessage = err.Error()
	}
	if resp == nil {
		return rec
	}
	if resp.Model != "" {
		rec.Model = resp.Model
	}
	rec.InputTokens, rec.OutputTokens = resp.Usage.InputTokens, resp.Usage.OutputTokens
	rec.ResponseBody = string(resp.Content)
	return rec
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest renders a request as tagged plain-text blocks.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}

	return b.String()
}
