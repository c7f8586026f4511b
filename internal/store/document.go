package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/chunk"
)

// SaveDocument inserts or replaces a document row. Replacing a document
// keeps its segments; SaveSegments replaces those.
func (s *Store) SaveDocument(ctx context.Context, doc Document) error {
	headings, err := json.Marshal(doc.Headings)
	if err != nil {
		return fmt.Errorf("encode headings: %w", err)
	}
	sections, err := json.Marshal(doc.Sections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}
	created := doc.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, title, source_path, page_count, headings, sections, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			source_path = excluded.source_path,
			page_count = excluded.page_count,
			headings = excluded.headings,
			sections = excluded.sections`,
		doc.ID, doc.Title, doc.SourcePath, doc.PageCount, string(headings), string(sections), formatTime(created),
	)
	if err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

// GetDocument returns the document with id or ErrNotFound.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, source_path, page_count, headings, sections, created_at FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return doc, err
}

// ListDocuments returns all documents ordered by id.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, source_path, page_count, headings, sections, created_at FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, rows.Err()
}

func scanDocument(row rowScanner) (*Document, error) {
	var (
		doc                         Document
		headings, sections, created string
	)
	if err := row.Scan(&doc.ID, &doc.Title, &doc.SourcePath, &doc.PageCount, &headings, &sections, &created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(headings), &doc.Headings); err != nil {
		return nil, fmt.Errorf("decode headings: %w", err)
	}
	if err := json.Unmarshal([]byte(sections), &doc.Sections); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}
	var err error
	if doc.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &doc, nil
}

// SaveSegments replaces all segments of docID. The document must exist.
func (s *Store) SaveSegments(ctx context.Context, docID string, segments []chunk.Segment) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE doc_id = ?`, docID); err != nil {
			return fmt.Errorf("clear segments: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO segments (id, doc_id, position, section_path, page, text, evidence) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, seg := range segments {
			path, err := json.Marshal(nonNil(seg.SectionPath))
			if err != nil {
				return err
			}
			evidence, err := json.Marshal(nonNil(seg.Evidence))
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, seg.ID, docID, i, string(path), nullInt(seg.Page), seg.Text, string(evidence)); err != nil {
				return fmt.Errorf("insert segment %s: %w", seg.ID, err)
			}
		}
		return nil
	})
}

const segmentColumns = `id, section_path, page, text, evidence`

// ListSegments returns the segments of docID in chunking order.
func (s *Store) ListSegments(ctx context.Context, docID string) ([]chunk.Segment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+segmentColumns+` FROM segments WHERE doc_id = ? ORDER BY position`, docID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var out []chunk.Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *seg)
	}
	return out, rows.Err()
}

// GetSegment returns the segment with id or ErrNotFound.
func (s *Store) GetSegment(ctx context.Context, id string) (*chunk.Segment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+segmentColumns+` FROM segments WHERE id = ?`, id)
	seg, err := scanSegment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("segment %s: %w", id, ErrNotFound)
	}
	return seg, err
}

func scanSegment(row rowScanner) (*chunk.Segment, error) {
	var (
		seg            chunk.Segment
		path, evidence string
		page           sql.NullInt64
	)
	if err := row.Scan(&seg.ID, &path, &page, &seg.Text, &evidence); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(path), &seg.SectionPath); err != nil {
		return nil, fmt.Errorf("decode section path: %w", err)
	}
	if err := json.Unmarshal([]byte(evidence), &seg.Evidence); err != nil {
		return nil, fmt.Errorf("decode evidence: %w", err)
	}
	if len(seg.SectionPath) == 0 {
		seg.SectionPath = nil
	}
	if len(seg.Evidence) == 0 {
		seg.Evidence = nil
	}
	seg.Page = intPtr(page)
	return &seg, nil
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
