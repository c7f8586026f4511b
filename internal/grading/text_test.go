package grading

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "working memory", Normalize("  Working \t\n MEMORY "))
	assert.Equal(t, "", Normalize("   "))
}

func TestSplitMulti(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, SplitMulti("a; b, c/d 、e，f"))
	assert.Nil(t, SplitMulti(" ; , "))
}

func TestExtractKeywords(t *testing.T) {
	long := strings.Repeat("x", 21)
	got := ExtractKeywords("a bb bb ccc, dd.ee "+long, 8, 2, 20)
	assert.Equal(t, []string{"bb", "ccc", "dd", "ee"}, got)

	assert.Equal(t, []string{"bb", "ccc"}, ExtractKeywords("bb ccc dd", 2, 2, 20))
	assert.Equal(t, []string{"记忆", "容量"}, ExtractKeywords("记忆，容量。快", 8, 2, 20))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("same", "same"))
	assert.Equal(t, 0.0, Similarity("abc", ""))
	assert.InDelta(t, 8.0/13.0, Similarity("kitten", "sitting"), 1e-9)
	assert.InDelta(t, Similarity("记忆力", "记忆"), 0.8, 1e-9)

	// Past 200 characters, runes that dominate b are junk, so argument order matters.
	long := "x" + strings.Repeat("ab", 150)
	assert.Equal(t, 0.0, Similarity("ab", long))
	assert.Greater(t, Similarity(long, "ab"), 0.0)
}
