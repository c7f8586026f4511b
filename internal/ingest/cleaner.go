// Package ingest removes running headers, footers and publisher boilerplate
// from per-page text and detects page headings.
package ingest

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Result is the output of cleaning a document.
type Result struct {
	// Pages holds the cleaned text, one entry per input page.
	Pages []string

	Headers  []string
	Footers  []string
	Headings HeadingIndex
}

// Cleaner strips repeated lines and boilerplate. It is stateless after
// construction and safe for concurrent use.
type Cleaner struct {
	cfg       CleanerConfig
	fragments []string
}

// NewCleaner validates cfg and returns a Cleaner.
func NewCleaner(cfg CleanerConfig) (*Cleaner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fragments := make([]string, 0, len(cfg.BoilerplateFragments))
	for _, f := range cfg.BoilerplateFragments {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			fragments = append(fragments, f)
		}
	}
	return &Cleaner{cfg: cfg, fragments: fragments}, nil
}

// Clean detects running headers and footers across pages, strips them and
// the boilerplate lines from every page, then detects headings on the
// cleaned text.
func (c *Cleaner) Clean(pages []string) Result {
	headers, footers := c.DetectRepeated(pages)

	cleaned := make([]string, len(pages))
	for i, p := range pages {
		cleaned[i] = c.StripPage(p, headers, footers)
	}

	if c.cfg.SkipReferences {
		for i := range cleaned {
			if isReferencePage(cleaned[i], i, len(cleaned), c.cfg.ReferenceTailFraction) {
				cleaned[i] = ""
			}
		}
	}

	return Result{
		Pages:    cleaned,
		Headers:  headers,
		Footers:  footers,
		Headings: c.DetectHeadings(cleaned),
	}
}

// DetectRepeated returns the first lines (headers) and last lines (footers)
// that repeat on enough pages to be running page furniture.
func (c *Cleaner) DetectRepeated(pages []string) (headers, footers []string) {
	firstCounts := make(map[string]int)
	lastCounts := make(map[string]int)
	for _, p := range pages {
		first, last, ok := edgeLines(p)
		if !ok {
			continue
		}
		firstCounts[first]++
		lastCounts[last]++
	}
	headers = c.repeated(firstCounts, len(pages))
	footers = c.repeated(lastCounts, len(pages))
	return headers, footers
}

func (c *Cleaner) repeated(counts map[string]int, total int) []string {
	var out []string
	for line, n := range counts {
		if IsRepeatedLine(n, total, utf8.RuneCountInString(line), c.cfg.RepeatThreshold, c.cfg.MaxRepeatedLen) {
			out = append(out, line)
		}
	}
	sort.Strings(out)
	return out
}

// StripPage drops blank lines, lines equal to a header or footer, and
// boilerplate lines. Kept lines are trimmed and joined by newlines.
func (c *Cleaner) StripPage(text string, headers, footers []string) string {
	drop := make(map[string]struct{}, len(headers)+len(footers))
	for _, h := range headers {
		drop[h] = struct{}{}
	}
	for _, f := range footers {
		drop[f] = struct{}{}
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, ok := drop[line]; ok {
			continue
		}
		if IsBoilerplate(line, c.fragments) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// IsRepeatedLine reports whether a line seen count times across total pages
// qualifies as a header or footer.
func IsRepeatedLine(count, total, length int, threshold float64, maxLen int) bool {
	if total == 0 {
		return false
	}
	return float64(count)/float64(total) >= threshold && length < maxLen
}

// IsBoilerplate reports whether line contains any of the lowercase fragments.
func IsBoilerplate(line string, fragments []string) bool {
	lower := strings.ToLower(line)
	for _, f := range fragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

// edgeLines returns the first and last non-blank trimmed lines of a page.
func edgeLines(text string) (first, last string, ok bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !ok {
			first = line
			ok = true
		}
		last = line
	}
	return first, last, ok
}

var referencesRe = regexp.MustCompile(`(?i)^references\b`)

// isReferencePage matches a bibliography page in the tail of the document.
func isReferencePage(text string, index, total int, tail float64) bool {
	if total == 0 || index < int(float64(total)*tail) {
		return false
	}
	first, _, ok := edgeLines(text)
	if !ok {
		return false
	}
	return referencesRe.MatchString(first)
}
