package llm

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Config selects a backend and the request defaults layered over it.
type Config struct {
	// Provider names a backend: anthropic, openai, gemini, openrouter,
	// ollama or mock.
	Provider string
	Endpoint Endpoint
	Retry    RetryConfig

	// Temperature and Seed fill requests that leave them unset.
	Temperature float64
	Seed        int
	// Timeout bounds one Generate call, retries included.
	Timeout time.Duration
}

// Endpoint is how to reach a backend. Empty fields fall back to the
// backend's defaults.
type Endpoint struct {
	APIKey  string
	Model   string
	BaseURL string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

type backend struct {
	name string
	// keyEnv is the conventional variable probed by DiscoverConfig.
	keyEnv       string
	defaultModel string
	// keyless backends connect without an API key.
	keyless bool
	open    func(ctx context.Context, ep Endpoint) (Provider, error)
}

// Default models per backend. Constructors use these directly: reading
// backends from code reachable by an open func is an initialization cycle.
const (
	defaultGeminiModel     = "gemini-flash"
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultAnthropicModel  = "claude-haiku"
	defaultOpenRouterModel = "google/gemini-2.0-flash-exp"
	defaultOllamaModel     = "qwen3:8b"
)

// backends is ordered by discovery priority.
var backends = []backend{
	{name: "gemini", keyEnv: "GEMINI_API_KEY", defaultModel: defaultGeminiModel, open: openGemini},
	{name: "openai", keyEnv: "OPENAI_API_KEY", defaultModel: defaultOpenAIModel, open: openOpenAI},
	{name: "anthropic", keyEnv: "ANTHROPIC_API_KEY", defaultModel: defaultAnthropicModel, open: openAnthropic},
	{name: "openrouter", keyEnv: "OPENROUTER_API_KEY", defaultModel: defaultOpenRouterModel, open: openOpenRouter},
	{name: "ollama", keyEnv: "OLLAMA_HOST", defaultModel: defaultOllamaModel, keyless: true, open: openOllama},
	{name: "mock", keyless: true, open: func(context.Context, Endpoint) (Provider, error) { return NewMockProvider(), nil }},
}

func lookupBackend(name string) (backend, bool) {
	for _, b := range backends {
		if b.name == name {
			return b, true
		}
	}
	return backend{}, false
}

// DefaultModel reports the model a backend uses when none is configured.
func DefaultModel(provider string) string {
	b, _ := lookupBackend(provider)
	return b.defaultModel
}

func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Second,
		MaxWait:     10 * time.Second,
		Multiplier:  2,
	}
}

// DefaultConfig returns a Config for provider with its default model.
func DefaultConfig(provider string) Config {
	return Config{
		Provider:    provider,
		Endpoint:    Endpoint{Model: DefaultModel(provider)},
		Retry:       DefaultRetry(),
		Temperature: 0.1,
		Seed:        42,
		Timeout:     60 * time.Second,
	}
}

// DiscoverConfig returns a Config for the first backend whose conventional
// environment variable is set. For ollama the variable is the host.
func DiscoverConfig() (Config, bool) {
	for _, b := range backends {
		if b.keyEnv == "" {
			continue
		}
		v := os.Getenv(b.keyEnv)
		if v == "" {
			continue
		}
		cfg := DefaultConfig(b.name)
		switch b.name {
		case "ollama":
			cfg.Endpoint.BaseURL = v
		case "openai":
			cfg.Endpoint.APIKey = v
			cfg.Endpoint.BaseURL = os.Getenv("OPENAI_BASE_URL")
		default:
			cfg.Endpoint.APIKey = v
		}
		return cfg, true
	}
	return Config{}, false
}

// Validate checks that the selected backend exists and can authenticate.
func (c Config) Validate() error {
	b, ok := lookupBackend(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	// An OpenAI-compatible local server may not authenticate.
	keyOptional := b.keyless || (b.name == "openai" && c.Endpoint.BaseURL != "")
	if c.Endpoint.APIKey == "" && !keyOptional {
		return fmt.Errorf("an API key is required for the %s provider (set RLPRO_LLM_API_KEY or %s)", b.name, b.keyEnv)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0,2], got %v", c.Temperature)
	}
	return nil
}

// resolveModel maps a short alias to a provider model ID. Anything else is
// taken as a model ID already.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
