package store

import (
	"context"
	"database/sql"
	"fmt"
)

// eventCounter names the counter shared by attempts and LLM events. One
// sequence across both logs lets them be replayed interleaved in write
// order.
const eventCounter = "events"

// appendSequenced runs insert in a transaction together with the increment
// of the shared event counter. A failed insert leaves no gap.
func (s *Store) appendSequenced(ctx context.Context, insert func(tx *sql.Tx, seq int64) error) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var seq int64
		err := tx.QueryRowContext(ctx,
			`UPDATE counters SET value = value + 1 WHERE name = ? RETURNING value`, eventCounter,
		).Scan(&seq)
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		return insert(tx, seq)
	})
}
