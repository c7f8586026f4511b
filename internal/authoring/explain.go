package authoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/card"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/llm"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/logger"
)

// ExplainConfig bounds teaching notes.
type ExplainConfig struct {
	MinWords    int
	MaxWords    int
	MaxTokens   int
	Temperature float64
}

// DefaultExplainConfig returns the standard teaching note settings.
func DefaultExplainConfig() ExplainConfig {
	return ExplainConfig{
		MinWords:    180,
		MaxWords:    320,
		MaxTokens:   900,
		Temperature: 0.35,
	}
}

// Note is a teaching note for one card.
type Note struct {
	Text    string   `json:"text"`
	Prompts []string `json:"prompts"`
	// Fallback is set when the note was assembled without the model.
	Fallback bool `json:"fallback"`
}

var defaultPrompts = []string{
	"What evidence supports this idea?",
	"How might this apply beyond the given context?",
}

const (
	exampleLine = "Example: Imagine applying this idea in a real-life study scenario. How would it change your approach?"
	reflectLine = "Reflect: How would you explain this to a friend, and where might it fail?"
)

// Explainer writes teaching notes grounded in a card's source text.
type Explainer struct {
	provider llm.Provider
	cfg      ExplainConfig
	log      *logger.Logger
}

// NewExplainer creates an Explainer. A nil provider always uses the
// fallback note.
func NewExplainer(provider llm.Provider, cfg ExplainConfig, log *logger.Logger) *Explainer {
	def := DefaultExplainConfig()
	if cfg.MinWords < 1 {
		cfg.MinWords = def.MinWords
	}
	if cfg.MaxWords < cfg.MinWords {
		cfg.MaxWords = max(def.MaxWords, cfg.MinWords)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Explainer{provider: provider, cfg: cfg, log: log}
}

// Explain returns a note for c. source is the text the card was drawn
// from; when empty the card's question and answer stand in.
func (e *Explainer) Explain(ctx context.Context, c card.Card, source string) Note {
	material := strings.TrimSpace(source)
	if material == "" {
		material = strings.TrimSpace(strings.Join(nonEmpty(c.Question, c.Answer), "\n"))
	}
	if material == "" {
		material = "No context provided."
	}

	if e.provider != nil {
		note, err := e.generate(ctx, material)
		if err == nil {
			return note
		}
		e.log.Warn("teaching note generation failed, using fallback", "card_id", c.ID, "error", err)
	}
	return Note{
		Text:     FallbackNote(material, e.cfg.MinWords, e.cfg.MaxWords),
		Fallback: true,
	}
}

func (e *Explainer) generate(ctx context.Context, material string) (Note, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeTeachingNote)
	opts := llm.TextOptions{
		System:      SystemBase,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	}

	prompt := notePrompt(material, e.cfg)
	text, err := llm.GenerateText(ctx, e.provider, prompt, opts)
	if err != nil {
		return Note{}, err
	}
	words := strings.Fields(text)
	if len(words) < e.cfg.MinWords {
		retry := prompt + fmt.Sprintf("\nIMPORTANT: ensure at least %d words; elaborate each key point with a sentence.", e.cfg.MinWords)
		if text, err = llm.GenerateText(ctx, e.provider, retry, opts); err != nil {
			return Note{}, err
		}
		words = strings.Fields(text)
	}
	if len(words) < e.cfg.MinWords {
		return Note{}, fmt.Errorf("teaching note too short (%d words)", len(words))
	}
	if len(words) > e.cfg.MaxWords {
		words = words[:e.cfg.MaxWords]
	}
	return Note{Text: strings.Join(words, " "), Prompts: socraticPrompts(text)}, nil
}

func notePrompt(material string, cfg ExplainConfig) string {
	return "Create a teaching note for a new learner. DO NOT present it as a Q/A or flashcard. " +
		fmt.Sprintf("Length: %d-%d words. ", cfg.MinWords, cfg.MaxWords) +
		"Structure: intro to the idea; 3 key points (with brief elaboration); one concrete example; " +
		"close with 2 Socratic questions that invite reflection. " +
		"Stay strictly grounded in the provided context; do not invent citations. " +
		"If the context is too thin, generalize cautiously and state assumptions." +
		"\nContext:\n" + material
}

// socraticPrompts returns the last two questions in text, or the default
// prompts when it asks none.
func socraticPrompts(text string) []string {
	if !strings.Contains(text, "?") {
		return append([]string(nil), defaultPrompts...)
	}
	var qs []string
	for _, part := range strings.Split(text, "?") {
		if p := strings.TrimSpace(part); p != "" {
			qs = append(qs, p+"?")
		}
	}
	if len(qs) > 2 {
		qs = qs[len(qs)-2:]
	}
	return qs
}

// FallbackNote assembles a note from text alone: a summary of its
// sentences, an example line and a reflection line, padded with reflection
// lines to minWords and cut at maxWords.
func FallbackNote(text string, minWords, maxWords int) string {
	var points []string
	for _, p := range strings.Split(strings.TrimSpace(text), ". ") {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, shorten(p, 120, "..."))
		}
	}
	summary := "This note covers: " + strings.Join(points, "; ") + "."

	words := strings.Fields(strings.Join([]string{summary, exampleLine, reflectLine}, " "))
	reflect := strings.Fields(reflectLine)
	for len(words) < minWords {
		words = append(words, reflect...)
	}
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}

// shorten collapses whitespace and, when the result exceeds width
// characters, drops trailing words until the words plus placeholder fit.
func shorten(s string, width int, placeholder string) string {
	words := strings.Fields(s)
	joined := strings.Join(words, " ")
	if len([]rune(joined)) <= width {
		return joined
	}
	limit := width - len([]rune(placeholder))
	n := 0
	var kept []string
	for _, w := range words {
		wl := len([]rune(w))
		if len(kept) > 0 {
			wl++
		}
		if n+wl > limit {
			break
		}
		kept = append(kept, w)
		n += wl
	}
	if len(kept) == 0 {
		return placeholder
	}
	return strings.Join(kept, " ") + placeholder
}

func nonEmpty(ss ...string) []string {
	var out []string
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
