package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/card"
)

// SaveCards inserts or replaces cards belonging to docID, keeping the given
// order as their position.
func (s *Store) SaveCards(ctx context.Context, docID string, cards []card.Card) error {
	now := formatTime(time.Now())
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO cards (id, doc_id, position, card_type, question, answer, options, source_id, source_page, source_snippet, metadata, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				doc_id = excluded.doc_id,
				position = excluded.position,
				card_type = excluded.card_type,
				question = excluded.question,
				answer = excluded.answer,
				options = excluded.options,
				source_id = excluded.source_id,
				source_page = excluded.source_page,
				source_snippet = excluded.source_snippet,
				metadata = excluded.metadata`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, c := range cards {
			options, err := json.Marshal(nonNil(c.Options))
			if err != nil {
				return err
			}
			meta := c.Metadata
			if meta == nil {
				meta = map[string]any{}
			}
			metadata, err := json.Marshal(meta)
			if err != nil {
				return fmt.Errorf("encode metadata of %s: %w", c.ID, err)
			}
			_, err = stmt.ExecContext(ctx, c.ID, docID, i, string(c.Type), c.Question, c.Answer,
				string(options), c.SourceID, nullInt(c.SourcePage), c.SourceSnippet, string(metadata), now)
			if err != nil {
				return fmt.Errorf("insert card %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

const cardColumns = `id, card_type, question, answer, options, source_id, source_page, source_snippet, metadata`

// ListCards returns the cards of docID, or of every document when docID is
// empty, in document and authoring order.
func (s *Store) ListCards(ctx context.Context, docID string) ([]card.Card, error) {
	q := `SELECT ` + cardColumns + ` FROM cards`
	var args []any
	if docID != "" {
		q += ` WHERE doc_id = ?`
		args = append(args, docID)
	}
	q += ` ORDER BY doc_id, position`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var out []card.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetCard returns the card with id or ErrNotFound.
func (s *Store) GetCard(ctx context.Context, id string) (*card.Card, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card %s: %w", id, ErrNotFound)
	}
	return c, err
}

func scanCard(row rowScanner) (*card.Card, error) {
	var (
		c                 card.Card
		typ               string
		options, metadata string
		page              sql.NullInt64
	)
	if err := row.Scan(&c.ID, &typ, &c.Question, &c.Answer, &options, &c.SourceID, &page, &c.SourceSnippet, &metadata); err != nil {
		return nil, err
	}
	c.Type = card.Type(typ)
	if err := json.Unmarshal([]byte(options), &c.Options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	if len(c.Options) == 0 {
		c.Options = nil
	}
	if err := json.Unmarshal([]byte(metadata), &c.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	c.SourcePage = intPtr(page)
	return &c, nil
}
