// Package session runs a practice session: it draws cards from the
// scheduler, grades answers, feeds outcomes back into the weights and
// records each attempt.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/card"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/grading"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/logger"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/scheduler"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/store"
)

// ErrUnknownCard is returned by Answer for ids not in the session.
var ErrUnknownCard = errors.New("session: unknown card")

// AttemptRecorder persists graded attempts. *store.Store implements it.
type AttemptRecorder interface {
	AppendAttempt(ctx context.Context, a store.Attempt) error
}

// Options configures a Session. Only Cards is required.
type Options struct {
	ID        string
	Cards     []card.Card
	Scheduler *scheduler.Scheduler
	Scorer    grading.Scorer
	Recorder  AttemptRecorder
	Log       *logger.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Session is safe for concurrent use.
type Session struct {
	id       string
	cards    map[string]card.Card
	order    []card.Card
	sched    *scheduler.Scheduler
	scorer   grading.Scorer
	recorder AttemptRecorder
	log      *logger.Logger
	now      func() time.Time

	mu            sync.Mutex
	startedAt     time.Time
	attempted     int
	correct       int
	scoreTotal    float64
	progress      map[string]*CardProgress
	answeredOrder []string
}

// New creates a session over opts.Cards and registers them with the
// scheduler. Duplicate card ids keep their first occurrence.
func New(opts Options) *Session {
	s := &Session{
		id:       opts.ID,
		cards:    make(map[string]card.Card, len(opts.Cards)),
		sched:    opts.Scheduler,
		scorer:   opts.Scorer,
		recorder: opts.Recorder,
		log:      opts.Log,
		now:      opts.Now,
		progress: make(map[string]*CardProgress),
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.sched == nil {
		s.sched = scheduler.New()
	}
	if s.scorer == nil {
		s.scorer = grading.Default().AsScorer()
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	for _, c := range opts.Cards {
		if _, dup := s.cards[c.ID]; dup {
			continue
		}
		s.cards[c.ID] = c
		s.order = append(s.order, c)
	}
	s.sched.RegisterCards(s.order)
	s.startedAt = s.now()
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Cards returns the session's cards in registry order.
func (s *Session) Cards() []card.Card {
	return append([]card.Card(nil), s.order...)
}

// Card returns the card with id.
func (s *Session) Card(id string) (card.Card, bool) {
	c, ok := s.cards[id]
	return c, ok
}

// Scheduler returns the scheduler backing the session.
func (s *Session) Scheduler() *scheduler.Scheduler { return s.sched }

// Next draws a card among those matching sections and returns it with its
// current weight. It returns scheduler.ErrEmptyPool when the session has no
// cards.
func (s *Session) Next(sections []string) (card.Card, float64, error) {
	plan := BuildPlan(s.order, sections)
	if len(sections) > 0 && !plan.Filtered {
		s.log.Debug("section filter matched no cards, drawing from all", "sections", sections)
	}
	id, err := s.sched.NextFrom(plan.CardIDs)
	if err != nil {
		return card.Card{}, 0, err
	}
	w, _ := s.sched.Weight(id)
	return s.cards[id], w, nil
}

// Answer grades answer for cardID, updates the card's weight and records
// the attempt. A recorder failure is returned after the weight update,
// which is kept.
func (s *Session) Answer(ctx context.Context, cardID, answer string) (grading.Result, error) {
	c, ok := s.cards[cardID]
	if !ok {
		return grading.Result{}, fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}

	res := s.scorer.Grade(ctx, c, answer)
	weight := s.sched.Update(cardID, res.IsCorrect)
	s.record(cardID, res, weight)

	if s.recorder == nil {
		return res, nil
	}
	attempt := store.Attempt{
		SessionID:    s.id,
		CardID:       cardID,
		CardType:     string(c.Type),
		UserAnswer:   answer,
		IsCorrect:    res.IsCorrect,
		Score:        res.Score,
		Method:       res.Details.Method,
		Feedback:     res.Details.Feedback,
		EvidenceUsed: evidenceOf(c),
		WeightAfter:  weight,
		AnsweredAt:   s.now(),
	}
	if err := s.recorder.AppendAttempt(ctx, attempt); err != nil {
		return res, fmt.Errorf("record attempt: %w", err)
	}
	return res, nil
}

func (s *Session) record(cardID string, res grading.Result, weight float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempted++
	if res.IsCorrect {
		s.correct++
	}
	s.scoreTotal += res.Score

	cp, ok := s.progress[cardID]
	if !ok {
		cp = &CardProgress{CardID: cardID}
		s.progress[cardID] = cp
		s.answeredOrder = append(s.answeredOrder, cardID)
	}
	cp.Record(res.IsCorrect, res.Score, weight)
}

func evidenceOf(c card.Card) []string {
	if c.SourceSnippet == "" {
		return nil
	}
	return []string{c.SourceSnippet}
}
