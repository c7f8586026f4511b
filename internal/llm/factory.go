package llm

import (
	"context"
	"fmt"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/logger"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/store"
)

// NewProvider opens the configured backend and layers the middleware over
// it, outermost first: defaults, retry, event logging. A nil events repo
// skips event logging. The mock backend is returned bare.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b, _ := lookupBackend(cfg.Provider)

	ep := cfg.Endpoint
	if ep.Model == "" {
		ep.Model = b.defaultModel
	}
	p, err := b.open(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", b.name, err)
	}
	if b.name == "mock" {
		return p, nil
	}

	if events != nil {
		p = WithLogging(p, b.name, events, log)
	}
	p = WithRetry(p, cfg.Retry, log)
	return WithDefaults(p, Defaults{
		Temperature: cfg.Temperature,
		Seed:        cfg.Seed,
		Timeout:     cfg.Timeout,
	}), nil
}
