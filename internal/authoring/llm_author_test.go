package authoring

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/card"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/chunk"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/llm"
)

func testSegment() chunk.Segment {
	page := 3
	return chunk.Segment{
		ID:          "handbook_seg_2",
		SectionPath: []string{"2 Retrieval"},
		Page:        &page,
		Text:        "Retrieval practice strengthens memory. Spacing spreads practice over time.",
		Evidence:    []string{"Retrieval practice strengthens memory.", "Spacing spreads practice over time."},
	}
}

func cardsJSON() json.RawMessage {
	return json.RawMessage(`{"cards": [
		{"card_type": "term", "question": "What is retrieval practice?", "answer": "Recalling information from memory", "options": []},
		{"card_type": "concept", "question": "Why does spacing help?", "answer": "It spreads practice over time", "options": []},
		{"card_type": "cloze", "question": "Retrieval practice strengthens memory.", "answer": "memory", "options": []},
		{"card_type": "short_answer", "question": "Name one study technique.", "answer": "Spacing", "options": []}
	]}`)
}

func TestLLMAuthor_DraftsAndValidates(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: cardsJSON()})
	a := NewLLMAuthor(mock, DefaultConfig(), nil)

	out := a.Author(context.Background(), testSegment())

	if len(out.Cards) != 3 {
		t.Fatalf("expected 3 valid cards, got %d: %+v", len(out.Cards), out.Cards)
	}
	wantIDs := []string{"handbook_seg_2_card_1", "handbook_seg_2_card_2", "handbook_seg_2_card_4"}
	for i, c := range out.Cards {
		if c.ID != wantIDs[i] {
			t.Errorf("card %d id = %q, want %q", i, c.ID, wantIDs[i])
		}
		if c.SourceID != "handbook_seg_2" || c.SourcePage == nil || *c.SourcePage != 3 {
			t.Errorf("card %d provenance = %+v", i, c)
		}
		if c.Options != nil {
			t.Errorf("open card %d should have nil options", i)
		}
		if got := c.Sections(); len(got) != 1 || got[0] != "2 Retrieval" {
			t.Errorf("card %d sections = %v", i, got)
		}
		if c.IsFallback() {
			t.Errorf("card %d marked as fallback", i)
		}
	}
	if out.Cards[0].SourceSnippet != "Retrieval practice strengthens memory. Spacing spreads practice over time." {
		t.Errorf("snippet = %q", out.Cards[0].SourceSnippet)
	}

	if len(out.Errors) != 1 || !strings.HasPrefix(out.Errors[0], "handbook_seg_2 card 3 schema error:") {
		t.Errorf("errors = %v", out.Errors)
	}
}

func TestLLMAuthor_PromptAndRequest(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: cardsJSON()})
	a := NewLLMAuthor(mock, DefaultConfig(), nil)
	a.Author(context.Background(), testSegment())

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.System != SystemBase {
		t.Errorf("system = %q", req.System)
	}
	if req.Schema != CardsSchema {
		t.Error("request should carry CardsSchema")
	}
	msg := req.Messages[0].Content
	for _, part := range []string{
		"Source:\nRetrieval practice strengthens memory.",
		"Generate 4 learning cards",
		`["term","concept","cloze","short_answer"]`,
		"exactly one {blank}",
	} {
		if !strings.Contains(msg, part) {
			t.Errorf("prompt missing %q:\n%s", part, msg)
		}
	}
}

func TestLLMAuthor_ChoiceCards(t *testing.T) {
	content := json.RawMessage(`{"cards": [
		{"card_type": "multiple_choice", "question": "Which help retention?", "answer": "spacing; testing", "options": ["spacing", "cramming", "testing"]},
		{"card_type": "single_choice", "question": "Which is passive?", "answer": "rereading", "options": ["testing", "spacing"]},
		{"card_type": "Single_Choice", "question": "Which is active?", "answer": "Testing", "options": ["testing", "rereading"]}
	]}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: content})
	a := NewLLMAuthor(mock, DefaultConfig(), nil)

	out := a.Author(context.Background(), testSegment())

	if len(out.Cards) != 2 {
		t.Fatalf("expected 2 cards, got %+v (errors %v)", out.Cards, out.Errors)
	}
	if out.Cards[0].Type != card.TypeMultipleChoice || len(out.Cards[0].Options) != 3 {
		t.Errorf("first card = %+v", out.Cards[0])
	}
	if out.Cards[1].Type != card.TypeSingleChoice || out.Cards[1].ID != "handbook_seg_2_card_3" {
		t.Errorf("second card = %+v", out.Cards[1])
	}
	if len(out.Errors) != 1 || !strings.Contains(out.Errors[0], "card 2 schema error") {
		t.Errorf("errors = %v", out.Errors)
	}
}

func TestLLMAuthor_NilProviderUsesFallback(t *testing.T) {
	out := NewLLMAuthor(nil, DefaultConfig(), nil).Author(context.Background(), testSegment())

	if len(out.Cards) != 1 || out.Cards[0].ID != "handbook_seg_2_card_fallback" {
		t.Fatalf("cards = %+v", out.Cards)
	}
	if len(out.Errors) != 0 {
		t.Errorf("fallback should report no errors, got %v", out.Errors)
	}
}

func TestLLMAuthor_ProviderErrorUsesFallback(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("connection refused")}})
	out := NewLLMAuthor(mock, DefaultConfig(), nil).Author(context.Background(), testSegment())

	if len(out.Cards) != 1 || !out.Cards[0].IsFallback() {
		t.Fatalf("cards = %+v", out.Cards)
	}
	if len(out.Errors) != 0 {
		t.Errorf("errors = %v", out.Errors)
	}
}

func TestLLMAuthor_InvalidResponseReportsParseError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"cards": "none"}`)})
	out := NewLLMAuthor(mock, DefaultConfig(), nil).Author(context.Background(), testSegment())

	if len(out.Cards) != 1 || !out.Cards[0].IsFallback() {
		t.Fatalf("cards = %+v", out.Cards)
	}
	if len(out.Errors) != 1 || !strings.HasPrefix(out.Errors[0], "handbook_seg_2 parse error:") {
		t.Errorf("errors = %v", out.Errors)
	}
}

func TestLLMAuthor_AllDraftsRejected(t *testing.T) {
	content := json.RawMessage(`{"cards": [
		{"card_type": "essay", "question": "Discuss.", "answer": "Anything", "options": []},
		{"card_type": "term", "question": "", "answer": "x", "options": []}
	]}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: content})
	out := NewLLMAuthor(mock, DefaultConfig(), nil).Author(context.Background(), testSegment())

	if len(out.Cards) != 1 || !out.Cards[0].IsFallback() {
		t.Fatalf("cards = %+v", out.Cards)
	}
	if len(out.Errors) != 2 {
		t.Errorf("errors = %v", out.Errors)
	}
}

func TestAuthorAll(t *testing.T) {
	segs := []chunk.Segment{
		{ID: "d_seg_1", Text: "One.", Evidence: []string{"One."}},
		{ID: "d_seg_2", Text: "Two.", Evidence: []string{"Two."}},
	}

	out, err := AuthorAll(context.Background(), HeuristicAuthor{}, segs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Cards) != 2 || out.Cards[1].ID != "d_seg_2_card_fallback" {
		t.Errorf("cards = %+v", out.Cards)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := AuthorAll(ctx, HeuristicAuthor{}, segs); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
