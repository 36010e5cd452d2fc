package textutil

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Scorer compares two normalized keys and returns a similarity in [0,100].
type Scorer func(a, b string) int

// TokenSortRatio scores a and b after sorting their tokens. Identical inputs
// (including two empty strings) score 100; an empty side otherwise scores 0.
func TokenSortRatio(a, b string) int {
	if a == b {
		return 100
	}
	left := sortedTokens(a)
	right := sortedTokens(b)
	if left == right {
		return 100
	}
	if left == "" || right == "" {
		return 0
	}
	return Ratio(left, right)
}

// Ratio returns the indel-distance similarity of a and b without any token
// processing.
func Ratio(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	common := lcsLength(ra, rb)
	return int(math.RoundToEven(100 * float64(2*common) / float64(total)))
}

func sortedTokens(value string) string {
	processed := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, value)
	tokens := strings.Fields(processed)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// lcsLength computes the longest common subsequence with a single rolling row.
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	row := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		diag := 0
		for j := 1; j <= len(b); j++ {
			above := row[j]
			if a[i-1] == b[j-1] {
				row[j] = diag + 1
			} else if row[j-1] > row[j] {
				row[j] = row[j-1]
			}
			diag = above
		}
	}
	return row[len(b)]
}
