package session

import "time"

// Summary holds the totals of a practice session.
type Summary struct {
	SessionID    string
	Duration     time.Duration
	Attempted    int
	Correct      int
	Accuracy     float64
	AverageScore float64
	// Cards lists per-card progress in the order cards were first answered.
	Cards []CardProgress
}

// Summary returns a snapshot of the session totals.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		SessionID: s.id,
		Duration:  s.now().Sub(s.startedAt),
		Attempted: s.attempted,
		Correct:   s.correct,
	}
	if s.attempted > 0 {
		sum.Accuracy = float64(s.correct) / float64(s.attempted)
		sum.AverageScore = s.scoreTotal / float64(s.attempted)
	}
	for _, id := range s.answeredOrder {
		sum.Cards = append(sum.Cards, *s.progress[id])
	}
	return sum
}
