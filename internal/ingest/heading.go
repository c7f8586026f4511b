package ingest

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Heading is a heading detected on a page.
type Heading struct {
	Page  int    `json:"page"`
	Title string `json:"title"`
}

// HeadingIndex maps page numbers to at most one heading each, ordered by page.
type HeadingIndex []Heading

// NewHeadingIndex builds an index from a page->title map.
func NewHeadingIndex(m map[int]string) HeadingIndex {
	idx := make(HeadingIndex, 0, len(m))
	for page, title := range m {
		idx = append(idx, Heading{Page: page, Title: title})
	}
	sort.Slice(idx, func(i, j int) bool { return idx[i].Page < idx[j].Page })
	return idx
}

// Lookup returns the heading detected on page.
func (h HeadingIndex) Lookup(page int) (string, bool) {
	i := sort.Search(len(h), func(i int) bool { return h[i].Page >= page })
	if i < len(h) && h[i].Page == page {
		return h[i].Title, true
	}
	return "", false
}

// Map returns the index as a page->title map.
func (h HeadingIndex) Map() map[int]string {
	m := make(map[int]string, len(h))
	for _, e := range h {
		m[e.Page] = e.Title
	}
	return m
}

// DetectHeadings scans the first lines of each page and records the first
// heading-like line. Pages are numbered from 1.
func (c *Cleaner) DetectHeadings(pages []string) HeadingIndex {
	var idx HeadingIndex
	for i, p := range pages {
		seen := 0
		for _, line := range strings.Split(p, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if seen == c.cfg.HeadingLookahead {
				break
			}
			seen++
			if LooksLikeHeading(line, c.cfg.Heading) {
				idx = append(idx, Heading{Page: i + 1, Title: line})
				break
			}
		}
	}
	return idx
}

var numberedHeadingRe = regexp.MustCompile(`^(Chapter\s+\d+|[0-9]+(\.[0-9]+)*)\s+[A-Z].*`)

// LooksLikeHeading applies the heading heuristic to a single trimmed line:
// length and trailing-period rejection first, then the numbered/chapter
// pattern, then the title-case fallback.
func LooksLikeHeading(line string, rules HeadingRules) bool {
	if utf8.RuneCountInString(line) > rules.MaxLen {
		return false
	}
	if strings.HasSuffix(line, ".") {
		return false
	}
	if numberedHeadingRe.MatchString(line) {
		return true
	}

	words := strings.Fields(line)
	if len(words) < rules.MinWords || len(words) > rules.MaxWords {
		return false
	}
	upper := 0
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return float64(upper)/float64(len(words)) > rules.TitleCaseRatio
}
