package ingest

import "fmt"

// DefaultBoilerplateFragments are substrings that mark a line as publisher
// boilerplate regardless of how often it repeats.
var DefaultBoilerplateFragments = []string{
	"proquest",
	"ebook central",
	"copyright",
	"all rights reserved",
	"taylor & francis",
}

// HeadingRules holds the thresholds of the heading heuristic.
type HeadingRules struct {
	// MaxLen rejects lines longer than this many characters.
	MaxLen int

	// MinWords and MaxWords bound the word count for the title-case check.
	MinWords int
	MaxWords int

	// TitleCaseRatio is the fraction of capitalized words a line must
	// exceed to pass the title-case check.
	TitleCaseRatio float64
}

// DefaultHeadingRules returns the standard heading thresholds.
func DefaultHeadingRules() HeadingRules {
	return HeadingRules{
		MaxLen:         80,
		MinWords:       2,
		MaxWords:       10,
		TitleCaseRatio: 0.6,
	}
}

// CleanerConfig controls header/footer removal and heading detection.
type CleanerConfig struct {
	// RepeatThreshold is the minimum fraction of pages a first or last line
	// must appear on to count as a running header or footer.
	RepeatThreshold float64

	// MaxRepeatedLen caps the length of a header/footer candidate. Longer
	// lines are treated as prose even when they repeat.
	MaxRepeatedLen int

	// BoilerplateFragments are matched case-insensitively against every line.
	BoilerplateFragments []string

	// HeadingLookahead is how many non-blank lines at the top of each page
	// are examined for a heading.
	HeadingLookahead int

	Heading HeadingRules

	// SkipReferences empties bibliography pages found near the end of the
	// document. Page numbering is preserved.
	SkipReferences bool

	// ReferenceTailFraction is where the reference search starts, as a
	// fraction of the page count.
	ReferenceTailFraction float64
}

// DefaultCleanerConfig returns the standard cleaner configuration.
func DefaultCleanerConfig() CleanerConfig {
	return CleanerConfig{
		RepeatThreshold:       0.6,
		MaxRepeatedLen:        120,
		BoilerplateFragments:  append([]string(nil), DefaultBoilerplateFragments...),
		HeadingLookahead:      5,
		Heading:               DefaultHeadingRules(),
		SkipReferences:        false,
		ReferenceTailFraction: 0.7,
	}
}

// Validate reports the first invalid threshold.
func (c CleanerConfig) Validate() error {
	if c.RepeatThreshold <= 0 || c.RepeatThreshold > 1 {
		return fmt.Errorf("repeat threshold must be in (0, 1], got %v", c.RepeatThreshold)
	}
	if c.MaxRepeatedLen <= 0 {
		return fmt.Errorf("max repeated line length must be positive, got %d", c.MaxRepeatedLen)
	}
	if c.HeadingLookahead < 1 {
		return fmt.Errorf("heading lookahead must be at least 1, got %d", c.HeadingLookahead)
	}
	if c.Heading.MaxLen <= 0 {
		return fmt.Errorf("heading max length must be positive, got %d", c.Heading.MaxLen)
	}
	if c.Heading.MinWords < 1 || c.Heading.MaxWords < c.Heading.MinWords {
		return fmt.Errorf("heading word bounds invalid: min %d, max %d", c.Heading.MinWords, c.Heading.MaxWords)
	}
	if c.Heading.TitleCaseRatio < 0 || c.Heading.TitleCaseRatio >= 1 {
		return fmt.Errorf("title-case ratio must be in [0, 1), got %v", c.Heading.TitleCaseRatio)
	}
	if c.ReferenceTailFraction < 0 || c.ReferenceTailFraction > 1 {
		return fmt.Errorf("reference tail fraction must be in [0, 1], got %v", c.ReferenceTailFraction)
	}
	return nil
}
