package ingest

import (
	"regexp"
	"strings"
)

// Section is a flat section derived from the heading index, spanning the
// pages up to the next detected heading.
type Section struct {
	Title     string `json:"title"`
	Level     int    `json:"level"`
	PageStart int    `json:"page_start"`
	PageEnd   int    `json:"page_end"`
}

// BuildSections turns headings into sections with page ranges. The last
// section runs to totalPages.
func BuildSections(headings HeadingIndex, totalPages int) []Section {
	sections := make([]Section, 0, len(headings))
	for i, h := range headings {
		end := totalPages
		if i+1 < len(headings) {
			end = headings[i+1].Page - 1
		}
		sections = append(sections, Section{
			Title:     h.Title,
			Level:     InferLevel(h.Title),
			PageStart: h.Page,
			PageEnd:   end,
		})
	}
	return sections
}

var (
	dottedNumberRe = regexp.MustCompile(`^\d+(\.\d+)+`)
	leadingNumRe   = regexp.MustCompile(`^\d+`)
)

// InferLevel guesses the nesting depth of a heading: dotted numbers
// ("2.3 Methods") are level 2, everything else level 1.
func InferLevel(title string) int {
	switch {
	case dottedNumberRe.MatchString(title):
		return 2
	case leadingNumRe.MatchString(title), strings.HasPrefix(strings.ToLower(title), "chapter"):
		return 1
	default:
		return 1
	}
}
