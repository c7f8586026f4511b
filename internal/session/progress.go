package session

// CardProgress tracks the attempts on one card within a session.
type CardProgress struct {
	CardID        string
	TotalAttempts int
	CorrectCount  int
	Accuracy      float64 // CorrectCount / TotalAttempts (computed)
	LastScore     float64
	Weight        float64 // scheduler weight after the last attempt
}

// Record adds a graded answer to the progress.
func (cp *CardProgress) Record(correct bool, score, weight float64) {
	cp.TotalAttempts++
	if correct {
		cp.CorrectCount++
	}
	cp.Accuracy = float64(cp.CorrectCount) / float64(cp.TotalAttempts)
	cp.LastScore = score
	cp.Weight = weight
}
