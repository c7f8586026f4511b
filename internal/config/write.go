package config

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

const redacted = "<redacted>"

// Write encodes cfg as TOML in the layout Load reads. A configured API key
// is replaced unless showSecrets is set.
func Write(w io.Writer, cfg *Config, showSecrets bool) error {
	out := *cfg
	if out.LLM.APIKey != "" && !showSecrets {
		out.LLM.APIKey = redacted
	}
	if err := toml.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
