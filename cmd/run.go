package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/llm"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/store"
)

// buildProvider returns the configured LLM provider with event logging into
// st, or nil when none is configured. Every consumer has a rule-based
// fallback, so a missing provider only disables AI features.
func buildProvider(ctx context.Context, st *store.Store) llm.Provider {
	settings, ok := cfg.LLMSettings()
	if !ok {
		fmt.Fprintln(os.Stderr, "No LLM provider configured; using rule-based fallbacks.")
		return nil
	}

	var events store.EventRepo
	if st != nil {
		events = st
	}
	provider, err := llm.NewProvider(ctx, settings, events, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "AI features will be unavailable.")
		return nil
	}
	log.Debug("llm provider ready", "provider", settings.Provider, "model", provider.ModelID())
	return provider
}
