// Package config loads rlpro settings from defaults, an optional TOML file
// and RLPRO_* environment variables.
package config

import (
	"time"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/chunk"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/grading"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/ingest"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/llm"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/scheduler"
)

// Config is the full application configuration.
type Config struct {
	// DataDir holds the database when DBPath is empty.
	DataDir string `mapstructure:"data_dir" toml:"data_dir"`
	DBPath  string `mapstructure:"db_path" toml:"db_path"`
	LogMode string `mapstructure:"log_mode" toml:"log_mode" validate:"required,oneof=dev prod production debug"`

	Cleaner   CleanerConfig   `mapstructure:"cleaner" toml:"cleaner"`
	Chunk     ChunkConfig     `mapstructure:"chunk" toml:"chunk"`
	Grading   GradingConfig   `mapstructure:"grading" toml:"grading"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" toml:"scheduler"`
	LLM       LLMConfig       `mapstructure:"llm" toml:"llm"`
}

type CleanerConfig struct {
	RepeatThreshold       float64  `mapstructure:"repeat_threshold" toml:"repeat_threshold" validate:"gt=0,lte=1"`
	MaxRepeatedLen        int      `mapstructure:"max_repeated_len" toml:"max_repeated_len" validate:"gt=0"`
	Boilerplate           []string `mapstructure:"boilerplate" toml:"boilerplate"`
	HeadingLookahead      int      `mapstructure:"heading_lookahead" toml:"heading_lookahead" validate:"gte=1"`
	HeadingMaxLen         int      `mapstructure:"heading_max_len" toml:"heading_max_len" validate:"gt=0"`
	HeadingMinWords       int      `mapstructure:"heading_min_words" toml:"heading_min_words" validate:"gte=1"`
	HeadingMaxWords       int      `mapstructure:"heading_max_words" toml:"heading_max_words" validate:"gtefield=HeadingMinWords"`
	TitleCaseRatio        float64  `mapstructure:"title_case_ratio" toml:"title_case_ratio" validate:"gte=0,lt=1"`
	SkipReferences        bool     `mapstructure:"skip_references" toml:"skip_references"`
	ReferenceTailFraction float64  `mapstructure:"reference_tail_fraction" toml:"reference_tail_fraction" validate:"gte=0,lte=1"`
}

type ChunkConfig struct {
	MaxChars          int `mapstructure:"max_chars" toml:"max_chars" validate:"gt=0"`
	OverlapChars      int `mapstructure:"overlap_chars" toml:"overlap_chars" validate:"gte=0"`
	EvidenceSentences int `mapstructure:"evidence_sentences" toml:"evidence_sentences" validate:"gte=1"`
}

type GradingConfig struct {
	PassThreshold float64 `mapstructure:"pass_threshold" toml:"pass_threshold" validate:"gt=0,lte=1"`
	MaxKeywords   int     `mapstructure:"max_keywords" toml:"max_keywords" validate:"gte=1"`
	MinKeywordLen int     `mapstructure:"min_keyword_len" toml:"min_keyword_len" validate:"gte=1"`
	MaxKeywordLen int     `mapstructure:"max_keyword_len" toml:"max_keyword_len" validate:"gtefield=MinKeywordLen"`
	// UseLLM grades open answers with the configured model.
	UseLLM bool `mapstructure:"use_llm" toml:"use_llm"`
}

type SchedulerConfig struct {
	Initial        float64 `mapstructure:"initial" toml:"initial" validate:"gt=0"`
	Min            float64 `mapstructure:"min" toml:"min" validate:"gt=0"`
	Max            float64 `mapstructure:"max" toml:"max" validate:"gtefield=Min"`
	CorrectDelta   float64 `mapstructure:"correct_delta" toml:"correct_delta"`
	IncorrectDelta float64 `mapstructure:"incorrect_delta" toml:"incorrect_delta"`
}

// LLMConfig selects a provider. An empty Provider means discovery from the
// standard API key environment variables.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider" toml:"provider" validate:"omitempty,oneof=anthropic openai gemini openrouter ollama mock"`
	Model       string        `mapstructure:"model" toml:"model"`
	BaseURL     string        `mapstructure:"base_url" toml:"base_url" validate:"omitempty,url"`
	APIKey      string        `mapstructure:"api_key" toml:"api_key"`
	Temperature float64       `mapstructure:"temperature" toml:"temperature" validate:"gte=0,lte=2"`
	Seed        int           `mapstructure:"seed" toml:"seed"`
	Timeout     time.Duration `mapstructure:"timeout" toml:"timeout" validate:"gt=0"`
	Retry       RetryConfig   `mapstructure:"retry" toml:"retry"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" toml:"max_attempts" validate:"gte=1"`
	InitialWait time.Duration `mapstructure:"initial_wait" toml:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait" toml:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier" toml:"multiplier" validate:"gte=1"`
}

// CleanerSettings converts to the ingest cleaner configuration.
func (c Config) CleanerSettings() ingest.CleanerConfig {
	cc := ingest.DefaultCleanerConfig()
	cc.RepeatThreshold = c.Cleaner.RepeatThreshold
	cc.MaxRepeatedLen = c.Cleaner.MaxRepeatedLen
	if len(c.Cleaner.Boilerplate) > 0 {
		cc.BoilerplateFragments = append([]string(nil), c.Cleaner.Boilerplate...)
	}
	cc.HeadingLookahead = c.Cleaner.HeadingLookahead
	cc.Heading = ingest.HeadingRules{
		MaxLen:         c.Cleaner.HeadingMaxLen,
		MinWords:       c.Cleaner.HeadingMinWords,
		MaxWords:       c.Cleaner.HeadingMaxWords,
		TitleCaseRatio: c.Cleaner.TitleCaseRatio,
	}
	cc.SkipReferences = c.Cleaner.SkipReferences
	cc.ReferenceTailFraction = c.Cleaner.ReferenceTailFraction
	return cc
}

func (c Config) ChunkSettings() chunk.Config {
	return chunk.Config{
		MaxChars:          c.Chunk.MaxChars,
		OverlapChars:      c.Chunk.OverlapChars,
		EvidenceSentences: c.Chunk.EvidenceSentences,
	}
}

func (c Config) GradingSettings() grading.Config {
	return grading.Config{
		PassThreshold: c.Grading.PassThreshold,
		MaxKeywords:   c.Grading.MaxKeywords,
		MinKeywordLen: c.Grading.MinKeywordLen,
		MaxKeywordLen: c.Grading.MaxKeywordLen,
	}
}

func (c Config) SchedulerParams() scheduler.Params {
	return scheduler.Params{
		Initial:        c.Scheduler.Initial,
		Min:            c.Scheduler.Min,
		Max:            c.Scheduler.Max,
		CorrectDelta:   c.Scheduler.CorrectDelta,
		IncorrectDelta: c.Scheduler.IncorrectDelta,
	}
}

// LLMSettings builds the provider configuration. Without an explicit
// provider it falls back to key discovery, and reports false when nothing
// was found. Model, key and base URL set here override what discovery
// found.
func (c Config) LLMSettings() (llm.Config, bool) {
	cfg := llm.DefaultConfig(c.LLM.Provider)
	if c.LLM.Provider == "" {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return llm.Config{}, false
		}
		cfg = discovered
	}

	ep := &cfg.Endpoint
	if c.LLM.Model != "" {
		ep.Model = c.LLM.Model
	}
	if c.LLM.APIKey != "" {
		ep.APIKey = c.LLM.APIKey
	}
	if c.LLM.BaseURL != "" {
		ep.BaseURL = c.LLM.BaseURL
	}

	cfg.Temperature = c.LLM.Temperature
	cfg.Seed = c.LLM.Seed
	cfg.Timeout = c.LLM.Timeout
	cfg.Retry = llm.RetryConfig{
		MaxAttempts: c.LLM.Retry.MaxAttempts,
		InitialWait: c.LLM.Retry.InitialWait,
		MaxWait:     c.LLM.Retry.MaxWait,
		Multiplier:  c.LLM.Retry.Multiplier,
	}
	return cfg, true
}
