package grading

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/card"
)

func openCard(answer string) card.Card {
	return card.Card{ID: "c1", Type: card.TypeShortAnswer, Question: "q", Answer: answer}
}

func TestGrade_MultipleChoicePartialCredit(t *testing.T) {
	g := Default()
	c := card.Card{ID: "m1", Type: card.TypeMultipleChoice, Answer: "a;b;c"}

	res := g.Grade(c, "a; b")

	assert.False(t, res.IsCorrect)
	assert.Greater(t, res.Score, 0.0)
	assert.Less(t, res.Score, 1.0)
	assert.InDelta(t, 2.0/3.0, res.Score, 1e-9)
	assert.Equal(t, MethodMultiSelect, res.Details.Method)
}

func TestGrade_ChoiceExactSetIgnoresOrderAndSeparators(t *testing.T) {
	g := Default()
	c := card.Card{Type: card.TypeMultipleChoice, Answer: "A, C, D"}

	res := g.Grade(c, "d/ c ;a")

	assert.True(t, res.IsCorrect)
	assert.Equal(t, 1.0, res.Score)
}

func TestGrade_ChoiceExtraSelectionIsIncorrect(t *testing.T) {
	g := Default()
	c := card.Card{Type: card.TypeSingleChoice, Answer: "B"}

	res := g.Grade(c, "b, c")

	assert.False(t, res.IsCorrect)
	assert.Equal(t, 1.0, res.Score, "all reference tokens were selected")
}

func TestGrade_ChoiceEmptyReference(t *testing.T) {
	g := Default()
	c := card.Card{Type: card.TypeSingleChoice, Answer: "  "}

	assert.True(t, g.Grade(c, "").IsCorrect)
	res := g.Grade(c, "x")
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 0.0, res.Score)
}

func TestGrade_UnknownTypeUsesSetComparison(t *testing.T) {
	g := Default()
	c := card.Card{Type: card.Type("flashcard"), Answer: "B"}

	res := g.Grade(c, "  b ")

	assert.True(t, res.IsCorrect)
	assert.Equal(t, MethodMultiSelect, res.Details.Method)
}

func TestGrade_OpenKeywordRecall(t *testing.T) {
	g := Default()

	res := g.Grade(openCard("Working memory capacity"), "memory capacity")

	assert.True(t, res.IsCorrect)
	assert.Equal(t, MethodKeyword, res.Details.Method)
	assert.Equal(t, []string{"working", "memory", "capacity"}, res.Details.Keywords)
	assert.Equal(t, []string{"memory", "capacity"}, res.Details.MatchedKeywords)
	assert.InDelta(t, 2.0/3.0, res.Details.Recall, 1e-9)
	assert.GreaterOrEqual(t, res.Score, res.Details.Similarity)
}

func TestGrade_OpenScrambledOrderStillCorrect(t *testing.T) {
	g := Default()

	res := g.Grade(openCard("encoding storage retrieval"), "retrieval, then encoding and storage")

	assert.True(t, res.IsCorrect)
	assert.Equal(t, 1.0, res.Details.Recall)
	assert.Equal(t, 1.0, res.Score)
}

func TestGrade_OpenUnrelatedAnswerFails(t *testing.T) {
	g := Default()

	res := g.Grade(openCard("Photosynthesis converts light into chemical energy"), "banana")

	assert.False(t, res.IsCorrect)
	assert.Less(t, res.Score, 0.6)
	assert.Empty(t, res.Details.MatchedKeywords)
}

func TestGrade_OpenScoreBounded(t *testing.T) {
	g := Default()
	answers := []string{"", "x", "Spacing", "spacing effect", "the spacing effect improves retention", "SPACING EFFECT"}
	for _, a := range answers {
		res := g.Grade(openCard("Spacing effect"), a)
		assert.GreaterOrEqual(t, res.Score, 0.0, a)
		assert.LessOrEqual(t, res.Score, 1.0, a)
		assert.Equal(t, res.Score >= 0.6, res.IsCorrect, a)
	}
}

func TestGrade_RecallMonotonicInMatchedKeywords(t *testing.T) {
	g := Default()
	c := openCard("alpha beta gamma delta epsilon")

	answers := []string{"", "alpha", "alpha beta", "alpha beta gamma", "alpha beta gamma delta", "alpha beta gamma delta epsilon"}
	prev := -1.0
	for _, a := range answers {
		res := g.Grade(c, a)
		require.GreaterOrEqual(t, res.Details.Recall, prev, "answer %q", a)
		prev = res.Details.Recall
	}
	assert.Equal(t, 1.0, prev)
}

func TestGrade_ClozeAndTermAreOpen(t *testing.T) {
	g := Default()
	for _, typ := range []card.Type{card.TypeTerm, card.TypeConcept, card.TypeCloze} {
		c := card.Card{Type: typ, Answer: "hippocampus"}
		res := g.Grade(c, "The hippocampus")
		assert.Equal(t, MethodKeyword, res.Details.Method, typ)
		assert.True(t, res.IsCorrect, typ)
	}
}

func TestGrade_SimilarityTakesUserAnswerFirst(t *testing.T) {
	ref := "x" + strings.Repeat("ab", 150)

	res := Default().Grade(openCard(ref), "AB")

	assert.Equal(t, Similarity("ab", ref), res.Details.Similarity)
	assert.Equal(t, 0.0, res.Details.Similarity)
	assert.False(t, res.IsCorrect)
}

func TestNew(t *testing.T) {
	g, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), g.cfg)
	assert.Equal(t, DefaultConfig(), Default().cfg)

	bad := DefaultConfig()
	bad.PassThreshold = 3
	_, err = New(bad)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	bad := []Config{
		{PassThreshold: 0, MaxKeywords: 8, MinKeywordLen: 2, MaxKeywordLen: 20},
		{PassThreshold: 0.6, MaxKeywords: 0, MinKeywordLen: 2, MaxKeywordLen: 20},
		{PassThreshold: 0.6, MaxKeywords: 8, MinKeywordLen: 5, MaxKeywordLen: 3},
	}
	for _, c := range bad {
		assert.Error(t, c.Validate(), "%+v", c)
	}
}
