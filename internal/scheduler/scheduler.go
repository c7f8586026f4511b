// Package scheduler keeps a weight per practice card and draws the next card
// with probability proportional to its weight. Wrong answers raise a card's
// weight, right answers lower it, so struggling cards resurface more often.
package scheduler

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/card"
)

// ErrEmptyPool is returned by Next when no card is registered.
var ErrEmptyPool = errors.New("scheduler: no cards registered")

// Params bound and step the weights.
type Params struct {
	Initial        float64
	Min            float64
	Max            float64
	CorrectDelta   float64
	IncorrectDelta float64
}

// DefaultParams returns the standard weight model.
func DefaultParams() Params {
	return Params{
		Initial:        1.0,
		Min:            0.2,
		Max:            5.0,
		CorrectDelta:   -0.2,
		IncorrectDelta: 0.5,
	}
}

// Validate reports configuration errors.
func (p Params) Validate() error {
	if p.Min <= 0 {
		return fmt.Errorf("min weight must be positive, got %v", p.Min)
	}
	if p.Max < p.Min {
		return fmt.Errorf("max weight %v is below min %v", p.Max, p.Min)
	}
	if p.Initial < p.Min || p.Initial > p.Max {
		return fmt.Errorf("initial weight %v outside [%v, %v]", p.Initial, p.Min, p.Max)
	}
	return nil
}

func (p Params) clamp(w float64) float64 {
	return min(max(w, p.Min), p.Max)
}

// Entry is one row of the weight table.
type Entry struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

// Scheduler is safe for concurrent use.
type Scheduler struct {
	mu      sync.Mutex
	params  Params
	rng     *rand.Rand
	order   []string
	weights map[string]float64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRand sets the random source used for draws. Use a seeded source for
// reproducible sequences.
func WithRand(r *rand.Rand) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.rng = r
		}
	}
}

// New creates an empty scheduler with DefaultParams.
func New(opts ...Option) *Scheduler {
	return newScheduler(DefaultParams(), opts)
}

// NewWithParams creates an empty scheduler using the weight model p.
func NewWithParams(p Params, opts ...Option) (*Scheduler, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return newScheduler(p, opts), nil
}

func newScheduler(p Params, opts []Option) *Scheduler {
	s := &Scheduler{
		params:  p,
		weights: make(map[string]float64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// Register adds ids at the initial weight. Known ids keep their weight.
func (s *Scheduler) Register(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.registerLocked(id)
	}
}

// RegisterCards registers the ids of cards.
func (s *Scheduler) RegisterCards(cards []card.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cards {
		s.registerLocked(c.ID)
	}
}

func (s *Scheduler) registerLocked(id string) {
	if _, ok := s.weights[id]; ok {
		return
	}
	s.weights[id] = s.params.Initial
	s.order = append(s.order, id)
}

// Update applies the outcome of an attempt to id and returns the new weight.
// An unknown id is registered first.
func (s *Scheduler) Update(id string, correct bool) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registerLocked(id)
	delta := s.params.IncorrectDelta
	if correct {
		delta = s.params.CorrectDelta
	}
	w := s.params.clamp(s.weights[id] + delta)
	s.weights[id] = w
	return w
}

// Next draws a registered id with probability proportional to its weight.
func (s *Scheduler) Next() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.order) == 0 {
		return "", ErrEmptyPool
	}
	return s.drawLocked(s.order), nil
}

// NextFrom draws among candidates only. Candidates that were never
// registered weigh the initial weight and are not added to the table.
func (s *Scheduler) NextFrom(candidates []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(candidates) == 0 {
		return "", ErrEmptyPool
	}
	return s.drawLocked(candidates), nil
}

func (s *Scheduler) weightLocked(id string) float64 {
	if w, ok := s.weights[id]; ok {
		return w
	}
	return s.params.Initial
}

func (s *Scheduler) drawLocked(ids []string) string {
	total := 0.0
	for _, id := range ids {
		total += s.weightLocked(id)
	}
	r := s.rng.Float64() * total
	cumulative := 0.0
	for _, id := range ids {
		cumulative += s.weightLocked(id)
		if cumulative >= r {
			return id
		}
	}
	return ids[len(ids)-1]
}

// Weight returns the current weight of id.
func (s *Scheduler) Weight(id string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.weights[id]
	return w, ok
}

// Len returns the number of registered ids.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Snapshot returns the weight table in registration order.
func (s *Scheduler) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Entry{ID: id, Weight: s.weights[id]})
	}
	return out
}

// Restore loads persisted weights. Unknown ids are appended in entry order;
// known ids take the restored weight. Weights are clamped to the bounds.
func (s *Scheduler) Restore(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		s.registerLocked(e.ID)
		s.weights[e.ID] = s.params.clamp(e.Weight)
	}
}
