package chunk

import (
	"strings"
	"unicode"
)

// ExtractEvidence returns up to n leading sentences of text.
func ExtractEvidence(text string, n int) []string {
	if n <= 0 {
		return nil
	}
	sentences := SplitSentences(text)
	if len(sentences) > n {
		sentences = sentences[:n]
	}
	return sentences
}

// SplitSentences splits text after sentence terminators. ASCII terminators
// end a sentence only when followed by whitespace; full-width terminators
// always do.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0

	emit := func(end int) {
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			out = append(out, s)
		}
		for end < len(runes) && unicode.IsSpace(runes[end]) {
			end++
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; {
		case isWideTerminator(r):
			emit(i + 1)
		case r == '.' || r == '!' || r == '?':
			if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				emit(i + 1)
			}
		}
		if start > i+1 {
			i = start - 1
		}
	}
	if start < len(runes) {
		emit(len(runes))
	}
	return out
}

func isWideTerminator(r rune) bool {
	switch r {
	case '。', '．', '！', '？':
		return true
	}
	return false
}
