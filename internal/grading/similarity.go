package grading

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Similarity returns the Ratcliff/Obershelp ratio 2*M/T of a and b computed
// over characters, where M is the total size of the matching blocks and T
// the combined length. Two empty strings are identical. The ratio is not
// symmetric: once b reaches 200 characters, characters making up more than
// 1% of b are treated as junk. Graders pass the user answer as a.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(runeStrings(a), runeStrings(b)).Ratio()
}

func runeStrings(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
