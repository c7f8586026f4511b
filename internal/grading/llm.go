package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/card"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/llm"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/logger"
)

// LLMConfig holds generation settings for model-assisted grading.
type LLMConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultLLMConfig returns the standard model grading settings.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		MaxTokens:   256,
		Temperature: 0.1,
	}
}

// LLMGrader asks a model to judge open answers and falls back to the rule
// grader on any failure. Choice cards are always graded by rules.
type LLMGrader struct {
	provider llm.Provider
	rules    *Grader
	cfg      LLMConfig
	log      *logger.Logger
}

// NewLLMGrader creates a model-assisted grader. A nil provider makes it
// behave exactly like rules; a nil log discards fallback notices.
func NewLLMGrader(provider llm.Provider, rules *Grader, cfg LLMConfig, log *logger.Logger) *LLMGrader {
	if rules == nil {
		rules = Default()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &LLMGrader{provider: provider, rules: rules, cfg: cfg, log: log}
}

// GradeSchema is the structured output expected from the model.
var GradeSchema = &llm.Schema{
	Name:        "grade-answer",
	Description: "Judgement of a learner answer against a reference answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"is_correct": map[string]any{"type": "boolean"},
			"score": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
			"feedback": map[string]any{"type": "string"},
		},
		"required":             []any{"is_correct", "score", "feedback"},
		"additionalProperties": false,
	},
}

type gradeOutput struct {
	IsCorrect bool    `json:"is_correct"`
	Score     float64 `json:"score"`
	Feedback  string  `json:"feedback"`
}

// Grade implements Scorer.
func (g *LLMGrader) Grade(ctx context.Context, c card.Card, answer string) Result {
	if g.provider == nil || !c.Type.IsOpen() {
		return g.rules.Grade(c, answer)
	}

	res, err := g.gradeWithModel(ctx, c, answer)
	if err != nil {
		g.log.Warn("model grading failed, using rules", "card_id", c.ID, "error", err)
		return g.rules.Grade(c, answer)
	}
	return res
}

func (g *LLMGrader) gradeWithModel(ctx context.Context, c card.Card, answer string) (Result, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeAnswerGrading)

	msg, err := buildGradeMessage(c, answer)
	if err != nil {
		return Result{}, fmt.Errorf("build grading prompt: %w", err)
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      gradeSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: msg}},
		Schema:      GradeSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return Result{}, err
	}

	var out gradeOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Result{}, fmt.Errorf("parse grading response: %w", err)
	}

	return Result{
		IsCorrect: out.IsCorrect,
		Score:     clamp01(out.Score),
		Details: Details{
			Expected: c.Answer,
			Received: answer,
			Method:   MethodLLM,
			Feedback: strings.TrimSpace(out.Feedback),
		},
	}, nil
}

const gradeSystemPrompt = `You grade a learner's answer to a study card against the reference answer.

Instructions:
- Accept paraphrases and synonyms that preserve the meaning of the reference.
- Score from 0.0 (unrelated) to 1.0 (fully equivalent).
- Set is_correct to true when the answer captures the key idea.
- Keep feedback to one or two sentences addressed to the learner.`

var gradeUserTemplate = template.Must(template.New("grade").Parse(`Question: {{.Question}}
Reference answer: {{.Answer}}
{{if .Evidence}}Source excerpt: {{.Evidence}}
{{end}}Learner answer: {{.Learner}}`))

func buildGradeMessage(c card.Card, answer string) (string, error) {
	var buf bytes.Buffer
	err := gradeUserTemplate.Execute(&buf, struct {
		Question, Answer, Evidence, Learner string
	}{c.Question, c.Answer, c.SourceSnippet, answer})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
