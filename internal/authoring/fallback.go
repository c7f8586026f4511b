package authoring

import (
	"context"
	"strings"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/card"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/chunk"
)

const (
	fallbackQuestionPrefix = "Based on this section, what is the key idea? "
	fallbackQuestionChars  = 120
	fallbackTextChars      = 200
	snippetChars           = 500
)

// HeuristicAuthor builds one short-answer card per segment from its leading
// evidence sentence. It needs no model and never reports errors.
type HeuristicAuthor struct{}

// Author implements Author.
func (HeuristicAuthor) Author(_ context.Context, seg chunk.Segment) Outcome {
	return Outcome{Cards: []card.Card{FallbackCard(seg)}}
}

// FallbackCard returns the heuristic card for seg, with id
// "{segment id}_card_fallback".
func FallbackCard(seg chunk.Segment) card.Card {
	var first string
	if len(seg.Evidence) > 0 {
		first = seg.Evidence[0]
	} else {
		first = truncateRunes(seg.Text, fallbackTextChars)
	}
	first = strings.TrimSpace(first)

	c := baseCard(seg)
	c.ID = seg.ID + "_card_fallback"
	c.Type = card.TypeShortAnswer
	c.Question = fallbackQuestionPrefix + truncateRunes(first, fallbackQuestionChars)
	c.Answer = first
	c.Metadata["fallback"] = true
	return c
}

// baseCard fills the provenance fields shared by every card of seg.
func baseCard(seg chunk.Segment) card.Card {
	section := seg.SectionPath
	if section == nil {
		section = []string{}
	}
	return card.Card{
		SourceID:      seg.ID,
		SourcePage:    seg.Page,
		SourceSnippet: truncateRunes(strings.Join(seg.Evidence, " "), snippetChars),
		Metadata:      map[string]any{"section": section},
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
