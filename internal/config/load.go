package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/chunk"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/grading"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/ingest"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/llm"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/scheduler"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/store"
)

const (
	// EnvPrefix prefixes every environment override, e.g. RLPRO_CHUNK_MAX_CHARS.
	EnvPrefix = "RLPRO"

	// EnvConfigFile names the config file when no path is passed to Load.
	EnvConfigFile = "RLPRO_CONFIG"

	fileName = "rlpro"
)

// Load builds the configuration in order: defaults, then the config file,
// then environment variables. An explicit path must exist; otherwise
// rlpro.toml is looked up in the working directory and the user config
// directory, and its absence is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, fileName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints and reports every failing field.
func Validate(cfg *Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// DatabasePath resolves the SQLite file: db_path, then data_dir/rlpro.db,
// then the store default.
func (c Config) DatabasePath() (string, error) {
	switch {
	case c.DBPath != "":
		return c.DBPath, store.EnsureDir(c.DBPath)
	case c.DataDir != "":
		p := filepath.Join(c.DataDir, "rlpro.db")
		return p, store.EnsureDir(p)
	default:
		return store.DefaultDBPath()
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")
	v.SetDefault("db_path", "")
	v.SetDefault("log_mode", "dev")

	cl := ingest.DefaultCleanerConfig()
	v.SetDefault("cleaner.repeat_threshold", cl.RepeatThreshold)
	v.SetDefault("cleaner.max_repeated_len", cl.MaxRepeatedLen)
	v.SetDefault("cleaner.boilerplate", cl.BoilerplateFragments)
	v.SetDefault("cleaner.heading_lookahead", cl.HeadingLookahead)
	v.SetDefault("cleaner.heading_max_len", cl.Heading.MaxLen)
	v.SetDefault("cleaner.heading_min_words", cl.Heading.MinWords)
	v.SetDefault("cleaner.heading_max_words", cl.Heading.MaxWords)
	v.SetDefault("cleaner.title_case_ratio", cl.Heading.TitleCaseRatio)
	v.SetDefault("cleaner.skip_references", cl.SkipReferences)
	v.SetDefault("cleaner.reference_tail_fraction", cl.ReferenceTailFraction)

	ch := chunk.DefaultConfig()
	v.SetDefault("chunk.max_chars", ch.MaxChars)
	v.SetDefault("chunk.overlap_chars", ch.OverlapChars)
	v.SetDefault("chunk.evidence_sentences", ch.EvidenceSentences)

	gr := grading.DefaultConfig()
	v.SetDefault("grading.pass_threshold", gr.PassThreshold)
	v.SetDefault("grading.max_keywords", gr.MaxKeywords)
	v.SetDefault("grading.min_keyword_len", gr.MinKeywordLen)
	v.SetDefault("grading.max_keyword_len", gr.MaxKeywordLen)
	v.SetDefault("grading.use_llm", false)

	sp := scheduler.DefaultParams()
	v.SetDefault("scheduler.initial", sp.Initial)
	v.SetDefault("scheduler.min", sp.Min)
	v.SetDefault("scheduler.max", sp.Max)
	v.SetDefault("scheduler.correct_delta", sp.CorrectDelta)
	v.SetDefault("scheduler.incorrect_delta", sp.IncorrectDelta)

	lc := llm.DefaultConfig("")
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.temperature", lc.Temperature)
	v.SetDefault("llm.seed", lc.Seed)
	v.SetDefault("llm.timeout", lc.Timeout)
	v.SetDefault("llm.retry.max_attempts", lc.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", lc.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", lc.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", lc.Retry.Multiplier)
}
