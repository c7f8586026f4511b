// Package chunk splits cleaned page text into bounded, overlapping segments
// that carry section context and evidence sentences.
package chunk

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/ingest"
)

// Config controls segment size and evidence extraction.
type Config struct {
	// MaxChars is the soft upper bound on a segment's length in characters.
	MaxChars int

	// OverlapChars is how many trailing characters of a flushed segment seed
	// the next one. Zero disables carry-over.
	OverlapChars int

	// EvidenceSentences is the number of leading sentences kept as evidence.
	EvidenceSentences int
}

// DefaultConfig returns the standard chunking configuration.
func DefaultConfig() Config {
	return Config{
		MaxChars:          900,
		OverlapChars:      120,
		EvidenceSentences: 2,
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.MaxChars <= 0 {
		return fmt.Errorf("max chars must be positive, got %d", c.MaxChars)
	}
	if c.OverlapChars < 0 {
		return fmt.Errorf("overlap chars must not be negative, got %d", c.OverlapChars)
	}
	if c.EvidenceSentences < 1 {
		return fmt.Errorf("evidence sentences must be at least 1, got %d", c.EvidenceSentences)
	}
	return nil
}

// Segment is a bounded span of cleaned document text with provenance.
type Segment struct {
	ID          string   `json:"id"`
	SectionPath []string `json:"section_path"`
	// Page is the page being read when the segment was flushed. It is nil
	// for the final segment, which spans the end of the document.
	Page     *int     `json:"page"`
	Text     string   `json:"text"`
	Evidence []string `json:"evidence"`
}

// Chunker is stateless after construction and safe for concurrent use.
type Chunker struct {
	cfg Config
}

// New validates cfg and returns a Chunker.
func New(cfg Config) (*Chunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("chunker config: %w", err)
	}
	return &Chunker{cfg: cfg}, nil
}

// buffer accumulates paragraphs until the next flush. length counts
// paragraph runes only; the separators added by text are not budgeted.
type buffer struct {
	parts  []string
	length int
}

func (b *buffer) add(s string) {
	b.parts = append(b.parts, s)
	b.length += utf8.RuneCountInString(s)
}

func (b *buffer) text() string {
	return strings.TrimSpace(strings.Join(b.parts, "\n\n"))
}

// Chunk splits pages into segments. A page's heading takes effect from its
// first paragraph: a flush triggered by that paragraph closes text written
// under the previous heading and is tagged accordingly. Paragraphs are never
// split, so a single oversized paragraph becomes an oversized segment.
func (c *Chunker) Chunk(docID string, pages []string, headings ingest.HeadingIndex) []Segment {
	var (
		segments []Segment
		buf      buffer
		heading  string
	)

	flush := func(page *int) string {
		text := buf.text()
		var path []string
		if heading != "" {
			path = []string{heading}
		}
		segments = append(segments, Segment{
			ID:          fmt.Sprintf("%s_seg_%d", docID, len(segments)+1),
			SectionPath: path,
			Page:        page,
			Text:        text,
			Evidence:    ExtractEvidence(text, c.cfg.EvidenceSentences),
		})
		return text
	}

	for i, pageText := range pages {
		pageNum := i + 1
		pending, hasHeading := headings.Lookup(pageNum)

		for _, para := range SplitParagraphs(pageText) {
			paraLen := utf8.RuneCountInString(para)
			if len(buf.parts) > 0 && buf.length+paraLen > c.cfg.MaxChars {
				flushed := flush(&pageNum)
				buf = buffer{}
				if c.cfg.OverlapChars > 0 {
					buf.add(tail(flushed, c.cfg.OverlapChars))
				}
			}
			buf.add(para)
			if hasHeading {
				heading = pending
				hasHeading = false
			}
		}
		if hasHeading {
			heading = pending
		}
	}

	if len(buf.parts) > 0 {
		flush(nil)
	}
	return segments
}

var (
	paragraphBreakRe = regexp.MustCompile(`\n\s*\n`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
)

// SplitParagraphs splits text on blank lines and collapses the whitespace
// inside each paragraph to single spaces. Empty paragraphs are dropped.
func SplitParagraphs(text string) []string {
	var out []string
	for _, p := range paragraphBreakRe.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, whitespaceRe.ReplaceAllString(p, " "))
	}
	return out
}

// tail returns the last n characters of s.
func tail(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[len(r)-n:])
}
