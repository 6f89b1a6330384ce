package search

import (
	"unicode/utf8"

	fuzzysearch "github.com/lithammer/fuzzysearch/fuzzy"
)

// Levenshtein returns the edit distance between a and b: the minimum number
// of single-rune insertions, deletions and substitutions turning one into
// the other. Multi-byte characters cost one.
func Levenshtein(a, b string) int {
	return fuzzysearch.LevenshteinDistance(a, b)
}

// Similarity returns 1 - distance/maxLen in [0,1]. Two empty strings are
// identical.
func Similarity(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(maxLen)
}
