// Package grading scores learner answers against a card's reference answer.
//
// Choice cards compare token sets. Open cards combine keyword recall with a
// character-level similarity ratio, so paraphrases and reordered answers can
// still pass. The rule grader is deterministic and never fails; LLMGrader
// layers an optional model judgement on top of it.
package grading

import (
	"context"
	"fmt"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/card"
)

// Grading methods reported in Details.Method.
const (
	MethodMultiSelect = "multi_select"
	MethodKeyword     = "keyword_similarity"
	MethodLLM         = "llm"
)

// Config holds the rule grader's tunables.
type Config struct {
	PassThreshold float64
	MaxKeywords   int
	MinKeywordLen int
	MaxKeywordLen int
}

// DefaultConfig returns the standard grading thresholds.
func DefaultConfig() Config {
	return Config{
		PassThreshold: 0.6,
		MaxKeywords:   8,
		MinKeywordLen: 2,
		MaxKeywordLen: 20,
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.PassThreshold <= 0 || c.PassThreshold > 1 {
		return fmt.Errorf("pass threshold must be in (0,1], got %v", c.PassThreshold)
	}
	if c.MaxKeywords < 1 {
		return fmt.Errorf("max keywords must be at least 1, got %d", c.MaxKeywords)
	}
	if c.MinKeywordLen < 1 || c.MaxKeywordLen < c.MinKeywordLen {
		return fmt.Errorf("keyword length bounds [%d,%d] are invalid", c.MinKeywordLen, c.MaxKeywordLen)
	}
	return nil
}

// Details explains how a score was reached.
type Details struct {
	Expected        string   `json:"expected"`
	Received        string   `json:"received"`
	Method          string   `json:"method"`
	Keywords        []string `json:"keywords,omitempty"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	Recall          float64  `json:"recall"`
	Similarity      float64  `json:"similarity"`
	Feedback        string   `json:"feedback,omitempty"`
}

// Result is the outcome of grading one answer.
type Result struct {
	IsCorrect bool    `json:"is_correct"`
	Score     float64 `json:"score"`
	Details   Details `json:"details"`
}

// Scorer grades an answer to a card.
type Scorer interface {
	Grade(ctx context.Context, c card.Card, answer string) Result
}

// Grader is the deterministic rule-based grader.
type Grader struct {
	cfg Config
}

// New validates cfg and returns a rule grader.
func New(cfg Config) (*Grader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Grader{cfg: cfg}, nil
}

// Default returns a grader with DefaultConfig.
func Default() *Grader {
	return &Grader{cfg: DefaultConfig()}
}

// Grade scores answer against c. Choice types and unrecognized types use
// set comparison; open types use keyword recall and similarity.
func (g *Grader) Grade(c card.Card, answer string) Result {
	switch c.Type {
	case card.TypeTerm, card.TypeConcept, card.TypeCloze, card.TypeShortAnswer:
		return g.gradeOpen(c.Answer, answer)
	case card.TypeSingleChoice, card.TypeMultipleChoice:
		return g.gradeChoice(c.Answer, answer)
	default:
		return g.gradeChoice(c.Answer, answer)
	}
}

// AsScorer exposes g through the Scorer interface.
func (g *Grader) AsScorer() Scorer {
	return ruleScorer{g: g}
}

type ruleScorer struct{ g *Grader }

func (r ruleScorer) Grade(_ context.Context, c card.Card, answer string) Result {
	return r.g.Grade(c, answer)
}

func (g *Grader) gradeChoice(expected, received string) Result {
	ref := Normalize(expected)
	user := Normalize(received)
	refSet := toSet(SplitMulti(ref))
	userSet := toSet(SplitMulti(user))

	var correct bool
	if len(refSet) > 0 {
		correct = setsEqual(refSet, userSet)
	} else {
		correct = ref == user
	}

	score := 0.0
	switch {
	case correct:
		score = 1.0
	case len(refSet) > 0:
		hits := 0
		for tok := range userSet {
			if _, ok := refSet[tok]; ok {
				hits++
			}
		}
		score = clamp01(float64(hits) / float64(len(refSet)))
	}

	feedback := "Correct selection."
	if !correct {
		feedback = fmt.Sprintf("Expected: %s", expected)
	}
	return Result{
		IsCorrect: correct,
		Score:     score,
		Details: Details{
			Expected: expected,
			Received: received,
			Method:   MethodMultiSelect,
			Feedback: feedback,
		},
	}
}

func (g *Grader) gradeOpen(expected, received string) Result {
	ref := Normalize(expected)
	user := Normalize(received)

	keywords := ExtractKeywords(ref, g.cfg.MaxKeywords, g.cfg.MinKeywordLen, g.cfg.MaxKeywordLen)
	var matched []string
	recall := 0.0
	if len(keywords) > 0 {
		for _, kw := range keywords {
			if containsSubstring(user, kw) {
				matched = append(matched, kw)
			}
		}
		recall = float64(len(matched)) / float64(len(keywords))
	}

	sim := Similarity(user, ref)
	score := clamp01(max(recall, sim))
	correct := score >= g.cfg.PassThreshold

	feedback := fmt.Sprintf("Matched %d of %d key terms.", len(matched), len(keywords))
	if !correct {
		feedback += " Reference: " + expected
	}
	return Result{
		IsCorrect: correct,
		Score:     score,
		Details: Details{
			Expected:        expected,
			Received:        received,
			Method:          MethodKeyword,
			Keywords:        keywords,
			MatchedKeywords: matched,
			Recall:          recall,
			Similarity:      sim,
			Feedback:        feedback,
		},
	}
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
