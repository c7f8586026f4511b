package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SaveSession records the start of a practice session.
func (s *Store) SaveSession(ctx context.Context, sess Session) error {
	started := sess.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, model_name, temperature, seed) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		sess.ID, formatTime(started), sess.ModelName, sess.Temperature, sess.Seed)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

// AppendAttempt stores a graded answer. A missing ID is generated and a
// zero AnsweredAt is set to now.
func (s *Store) AppendAttempt(ctx context.Context, a Attempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AnsweredAt.IsZero() {
		a.AnsweredAt = time.Now()
	}
	evidence, err := json.Marshal(nonNil(a.EvidenceUsed))
	if err != nil {
		return fmt.Errorf("encode evidence: %w", err)
	}
	err = s.appendSequenced(ctx, func(tx *sql.Tx, seq int64) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO attempts (id, sequence, session_id, card_id, card_type, user_answer, is_correct, score, method, feedback, evidence_used, weight_after, answered_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, seq, a.SessionID, a.CardID, a.CardType, a.UserAnswer, a.IsCorrect, a.Score,
			a.Method, a.Feedback, string(evidence), a.WeightAfter, formatTime(a.AnsweredAt))
		return err
	})
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

// ListAttempts returns the attempts of sessionID in answer order, or every
// attempt when sessionID is empty.
func (s *Store) ListAttempts(ctx context.Context, sessionID string) ([]Attempt, error) {
	q := `SELECT id, sequence, session_id, card_id, card_type, user_answer, is_correct, score, method, feedback, evidence_used, weight_after, answered_at FROM attempts`
	var args []any
	if sessionID != "" {
		q += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	q += ` ORDER BY sequence`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var (
			a                  Attempt
			evidence, answered string
		)
		if err := rows.Scan(&a.ID, &a.Sequence, &a.SessionID, &a.CardID, &a.CardType, &a.UserAnswer,
			&a.IsCorrect, &a.Score, &a.Method, &a.Feedback, &evidence, &a.WeightAfter, &answered); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if err := json.Unmarshal([]byte(evidence), &a.EvidenceUsed); err != nil {
			return nil, fmt.Errorf("decode evidence: %w", err)
		}
		if len(a.EvidenceUsed) == 0 {
			a.EvidenceUsed = nil
		}
		t, err := parseTime(answered)
		if err != nil {
			return nil, fmt.Errorf("parse answered_at: %w", err)
		}
		a.AnsweredAt = t
		out = append(out, a)
	}
	return out, rows.Err()
}
