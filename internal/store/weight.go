package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/scheduler"
)

// SaveWeights upserts the weight table. Entry order becomes the stored
// registration order.
func (s *Store) SaveWeights(ctx context.Context, entries []scheduler.Entry) error {
	now := formatTime(time.Now())
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO weights (card_id, weight, position, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(card_id) DO UPDATE SET weight = excluded.weight, position = excluded.position, updated_at = excluded.updated_at`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, e := range entries {
			if _, err := stmt.ExecContext(ctx, e.ID, e.Weight, i, now); err != nil {
				return fmt.Errorf("save weight %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

// LoadWeights returns the weight table in registration order.
func (s *Store) LoadWeights(ctx context.Context) ([]scheduler.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT card_id, weight FROM weights ORDER BY position, card_id`)
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}
	defer rows.Close()

	var out []scheduler.Entry
	for rows.Next() {
		var e scheduler.Entry
		if err := rows.Scan(&e.ID, &e.Weight); err != nil {
			return nil, fmt.Errorf("scan weight: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
