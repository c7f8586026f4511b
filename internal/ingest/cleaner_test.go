package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCleaner(t *testing.T) *Cleaner {
	t.Helper()
	c, err := NewCleaner(DefaultCleanerConfig())
	require.NoError(t, err)
	return c
}

func bookPages() []string {
	return []string{
		"Learning Science Handbook\n1 Memory Basics\nWorking memory holds a few items.\n\nPage footer 2024",
		"Learning Science Handbook\nRehearsal keeps items active.\nCopyright 2024 Example Press\nPage footer 2024",
		"Learning Science Handbook\n2 Retrieval Practice\nTesting strengthens memory.\nPage footer 2024",
		"Another header\nSpacing helps retention.\nPage footer 2024",
		"Learning Science Handbook\nInterleaving mixes topics.\nlast line only here",
	}
}

func TestClean_RemovesHeadersFootersAndBoilerplate(t *testing.T) {
	c := newTestCleaner(t)
	res := c.Clean(bookPages())

	assert.Equal(t, []string{"Learning Science Handbook"}, res.Headers)
	assert.Equal(t, []string{"Page footer 2024"}, res.Footers)
	require.Len(t, res.Pages, 5)

	for i, p := range res.Pages {
		assert.NotContains(t, p, "Learning Science Handbook", "page %d", i+1)
		assert.NotContains(t, p, "Page footer 2024", "page %d", i+1)
		assert.NotContains(t, strings.ToLower(p), "copyright", "page %d", i+1)
		assert.NotContains(t, p, "\n\n", "blank lines survive on page %d", i+1)
	}
	assert.Equal(t, "1 Memory Basics\nWorking memory holds a few items.", res.Pages[0])
	assert.Equal(t, "Another header\nSpacing helps retention.", res.Pages[3])
	assert.Equal(t, "Interleaving mixes topics.\nlast line only here", res.Pages[4])
}

func TestClean_Idempotent(t *testing.T) {
	c := newTestCleaner(t)
	res := c.Clean(bookPages())

	for i, p := range res.Pages {
		again := c.StripPage(p, res.Headers, res.Footers)
		assert.Equal(t, p, again, "page %d changed on second pass", i+1)
	}
}

func TestClean_NoRepeatedLinesIsIdentityLike(t *testing.T) {
	c := newTestCleaner(t)
	pages := []string{
		"Alpha intro\n\n  first body line  \n",
		"Beta intro\nsecond body line\nAll Rights Reserved.",
	}
	res := c.Clean(pages)

	assert.Empty(t, res.Headers)
	assert.Empty(t, res.Footers)
	assert.Equal(t, "Alpha intro\nfirst body line", res.Pages[0])
	assert.Equal(t, "Beta intro\nsecond body line", res.Pages[1])
}

func TestDetectRepeated_LongLinesIgnored(t *testing.T) {
	c := newTestCleaner(t)
	long := strings.Repeat("a long sentence that repeats ", 5) // > 120 chars
	pages := []string{long + "\nx", long + "\ny", long + "\nz"}

	headers, footers := c.DetectRepeated(pages)
	assert.Empty(t, headers)
	assert.Empty(t, footers)
}

func TestIsRepeatedLine(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		total     int
		length    int
		threshold float64
		maxLen    int
		want      bool
	}{
		{"exactly at threshold", 3, 5, 10, 0.6, 120, true},
		{"below threshold", 2, 5, 10, 0.6, 120, false},
		{"length at cap", 5, 5, 120, 0.6, 120, false},
		{"length below cap", 5, 5, 119, 0.6, 120, true},
		{"no pages", 0, 0, 5, 0.6, 120, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsRepeatedLine(tt.count, tt.total, tt.length, tt.threshold, tt.maxLen)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsBoilerplate(t *testing.T) {
	assert.True(t, IsBoilerplate("Downloaded from ProQuest Ebook Central", DefaultBoilerplateFragments))
	assert.True(t, IsBoilerplate("© Taylor & Francis Group", DefaultBoilerplateFragments))
	assert.False(t, IsBoilerplate("The central executive coordinates", DefaultBoilerplateFragments))
}

func TestClean_SkipReferences(t *testing.T) {
	cfg := DefaultCleanerConfig()
	cfg.SkipReferences = true
	c, err := NewCleaner(cfg)
	require.NoError(t, err)

	pages := []string{
		"Intro body",
		"References\nearly ref on page 2",
		"More body",
		"Even more body",
		"References\nSmith, J. (2020).",
	}
	res := c.Clean(pages)

	require.Len(t, res.Pages, 5)
	assert.Equal(t, "References\nearly ref on page 2", res.Pages[1], "front references are kept")
	assert.Equal(t, "", res.Pages[4])
}

func TestNewCleaner_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CleanerConfig)
	}{
		{"zero threshold", func(c *CleanerConfig) { c.RepeatThreshold = 0 }},
		{"threshold above one", func(c *CleanerConfig) { c.RepeatThreshold = 1.5 }},
		{"zero cap", func(c *CleanerConfig) { c.MaxRepeatedLen = 0 }},
		{"no lookahead", func(c *CleanerConfig) { c.HeadingLookahead = 0 }},
		{"inverted word bounds", func(c *CleanerConfig) { c.Heading.MinWords = 5; c.Heading.MaxWords = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCleanerConfig()
			tt.mutate(&cfg)
			_, err := NewCleaner(cfg)
			assert.Error(t, err)
		})
	}
}

func TestReadTextPages(t *testing.T) {
	pages, err := ReadTextPages(strings.NewReader("one\r\ntwo\fthree"))
	require.NoError(t, err)
	assert.Equal(t, []string{"one\ntwo", "three"}, pages)
}

func TestDocumentID(t *testing.T) {
	assert.Equal(t, "handbook", DocumentID("/tmp/books/handbook.pdf"))
	assert.Equal(t, "notes.v2", DocumentID("notes.v2.txt"))
}
