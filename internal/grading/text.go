package grading

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	multiSepRe   = regexp.MustCompile(`[;,、，/ ]+`)
	keywordSepRe = regexp.MustCompile(`[ ,.;:、，。/]+`)
)

// Normalize trims, lowercases and collapses internal whitespace to single
// spaces.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// SplitMulti splits a selection list such as "a; b, c" into its tokens.
func SplitMulti(s string) []string {
	var out []string
	for _, tok := range multiSepRe.Split(s, -1) {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// ExtractKeywords returns up to limit distinct tokens of text whose length
// is within [minLen, maxLen] characters, in first-seen order.
func ExtractKeywords(text string, limit, minLen, maxLen int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tok := range keywordSepRe.Split(text, -1) {
		if len(out) >= limit {
			break
		}
		n := utf8.RuneCountInString(tok)
		if n < minLen || n > maxLen {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func containsSubstring(haystack, needle string) bool {
	return needle != "" && strings.Contains(haystack, needle)
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
