// Package authoring turns document segments into practice cards. A model
// drafts cards from the segment text; when it is unavailable or returns
// nothing usable, a heuristic card built from the segment's evidence takes
// its place, so every segment yields at least one card.
package authoring

import (
	"context"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/card"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/chunk"
)

// Outcome is the result of authoring one segment. Errors describe rejected
// drafts; they never prevent Cards from being non-empty.
type Outcome struct {
	Cards  []card.Card
	Errors []string
}

// Author produces cards for a segment.
type Author interface {
	Author(ctx context.Context, seg chunk.Segment) Outcome
}

// AuthorAll runs a over every segment in order and concatenates the
// results. It stops early only when ctx is done.
func AuthorAll(ctx context.Context, a Author, segments []chunk.Segment) (Outcome, error) {
	var all Outcome
	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		out := a.Author(ctx, seg)
		all.Cards = append(all.Cards, out.Cards...)
		all.Errors = append(all.Errors, out.Errors...)
	}
	return all, nil
}
