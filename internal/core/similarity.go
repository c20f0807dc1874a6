package core

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeForComparison lower-cases, trims and NFC-normalizes a string so
// that similarity is insensitive to case, surrounding whitespace and Unicode
// composition differences.
func normalizeForComparison(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// Similarity computes a normalized textual similarity between two strings in
// [0,1], derived from the Levenshtein edit distance. Equal strings (after
// normalization) score 1, as do two empty strings. The computation is
// O(len(a)*len(b)); callers must pre-truncate megabyte-scale inputs.
func Similarity(a, b string) float64 {
	a = normalizeForComparison(a)
	b = normalizeForComparison(b)

	if a == b {
		return 1.0
	}

	ra := []rune(a)
	rb := []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}

	dist := levenshtein(ra, rb)
	return 1.0 - float64(dist)/float64(maxLen)
}

// levenshtein computes the minimum number of single-rune insertions,
// deletions and substitutions to transform a into b, using two rolling rows
// of the standard DP table.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = 1 + min3(prev[j-1], curr[j-1], prev[j])
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
