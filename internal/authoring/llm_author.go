package authoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/template"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/card"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/chunk"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/llm"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/logger"
)

// Config controls model-drafted cards.
type Config struct {
	// Validators run in order on every draft; the first failure rejects it.
	Validators []Validator

	// CardsPerSegment is the number of cards requested per segment.
	CardsPerSegment int

	// Types are the card types the model may choose from.
	Types []card.Type

	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the standard authoring settings.
func DefaultConfig() Config {
	return Config{
		Validators:      DefaultValidators(),
		CardsPerSegment: 4,
		Types:           []card.Type{card.TypeTerm, card.TypeConcept, card.TypeCloze, card.TypeShortAnswer},
		MaxTokens:       512,
		Temperature:     0.1,
	}
}

// LLMAuthor drafts cards with a model and falls back to FallbackCard when
// the model is absent, fails, or yields no valid card.
type LLMAuthor struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

// NewLLMAuthor creates an author. A nil provider always uses the fallback.
func NewLLMAuthor(provider llm.Provider, cfg Config, log *logger.Logger) *LLMAuthor {
	if cfg.CardsPerSegment < 1 {
		cfg.CardsPerSegment = DefaultConfig().CardsPerSegment
	}
	if len(cfg.Types) == 0 {
		cfg.Types = DefaultConfig().Types
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &LLMAuthor{provider: provider, config: cfg, log: log}
}

// CardsSchema is the structured output expected from the model. Card fields
// are checked per card by the validators rather than by the schema so one
// bad draft does not discard the others.
var CardsSchema = &llm.Schema{
	Name:        "practice-cards",
	Description: "Learning cards drafted from one passage of source text",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cards": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"card_type": map[string]any{"type": "string"},
						"question":  map[string]any{"type": "string"},
						"answer":    map[string]any{"type": "string"},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Choices for choice cards; empty for every other type",
						},
					},
					"required": []any{"card_type", "question", "answer", "options"},
				},
			},
		},
		"required":             []any{"cards"},
		"additionalProperties": false,
	},
}

type cardsOutput struct {
	Cards []draftOutput `json:"cards"`
}

type draftOutput struct {
	CardType string   `json:"card_type"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Options  []string `json:"options"`
}

// Author implements Author.
func (a *LLMAuthor) Author(ctx context.Context, seg chunk.Segment) Outcome {
	if a.provider == nil {
		return Outcome{Cards: []card.Card{FallbackCard(seg)}}
	}

	drafts, err := a.draft(ctx, seg)
	if err != nil {
		var invalid *llm.ErrInvalidResponse
		if errors.As(err, &invalid) {
			return Outcome{
				Cards:  []card.Card{FallbackCard(seg)},
				Errors: []string{fmt.Sprintf("%s parse error: %v", seg.ID, err)},
			}
		}
		a.log.Warn("card generation failed, using fallback", "segment_id", seg.ID, "error", err)
		return Outcome{Cards: []card.Card{FallbackCard(seg)}}
	}

	var out Outcome
	for i, d := range drafts {
		c := baseCard(seg)
		c.ID = fmt.Sprintf("%s_card_%d", seg.ID, i+1)
		c.Type = card.Type(d.CardType)
		if t, err := card.ParseType(d.CardType); err == nil {
			c.Type = t
		}
		c.Question = d.Question
		c.Answer = d.Answer
		if len(d.Options) > 0 {
			c.Options = d.Options
		}

		if verr := a.validate(&c); verr != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("%s card %d schema error: %s", seg.ID, i+1, verr.Message))
			continue
		}
		out.Cards = append(out.Cards, c)
	}

	if len(out.Cards) == 0 {
		out.Cards = []card.Card{FallbackCard(seg)}
	}
	return out
}

func (a *LLMAuthor) validate(c *card.Card) *ValidationError {
	for _, v := range a.config.Validators {
		if verr := v.Validate(c); verr != nil {
			return verr
		}
	}
	return nil
}

func (a *LLMAuthor) draft(ctx context.Context, seg chunk.Segment) ([]draftOutput, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeCardAuthoring)

	msg, err := buildCardsMessage(seg.Text, a.config)
	if err != nil {
		return nil, fmt.Errorf("build card prompt: %w", err)
	}

	resp, err := a.provider.Generate(ctx, llm.Request{
		System:      SystemBase,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: msg}},
		Schema:      CardsSchema,
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
	})
	if err != nil {
		return nil, err
	}

	var raw cardsOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	return raw.Cards, nil
}

// SystemBase is the grounding instruction shared by every authoring prompt.
const SystemBase = "You are a concise assistant. Use only the provided source text. " +
	"Do not invent facts. Respond in the user's language."

var cardsTemplate = template.Must(template.New("cards").Parse(`Source:
{{.Source}}

Generate {{.Count}} learning cards as a JSON object {"cards": [...]}. Each card has:
- card_type: one of [{{range $i, $t := .Types}}{{if $i}},{{end}}"{{$t}}"{{end}}]
- question: string (for cloze, include exactly one {{.Blank}})
- answer: string
- options: list of choices for single_choice or multiple_choice, otherwise an empty list

Output only JSON (no extra text). Avoid invented content; stay faithful to the source.`))

func buildCardsMessage(source string, cfg Config) (string, error) {
	var buf bytes.Buffer
	err := cardsTemplate.Execute(&buf, struct {
		Source string
		Count  int
		Types  []card.Type
		Blank  string
	}{source, cfg.CardsPerSegment, cfg.Types, BlankPlaceholder})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
