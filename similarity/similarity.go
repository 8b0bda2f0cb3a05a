// Package similarity scores how alike two product names are on a 0-100
// scale. The token-set measure is insensitive to word order, duplicate
// words and letter case, which is what catches intake typos like
// "milo 500 g" against an existing "Milo 500g".
package similarity

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Ratio returns a plain edit-distance similarity between a and b:
// 100 means identical, 0 means nothing in common.
func Ratio(a, b string) int {
	lensum := len(a) + len(b)
	if lensum == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(float64(lensum-dist) / float64(lensum) * 100)
}

// TokenSetRatio compares the unique word sets of a and b. Shared words are
// factored out so that reordered or partially overlapping names still score
// high. Case-insensitive.
func TokenSetRatio(a, b string) int {
	ta := tokenSet(a)
	tb := tokenSet(b)

	var common, diffA, diffB []string
	for t := range ta {
		if tb[t] {
			common = append(common, t)
		} else {
			diffA = append(diffA, t)
		}
	}
	for t := range tb {
		if !ta[t] {
			diffB = append(diffB, t)
		}
	}
	sort.Strings(common)
	sort.Strings(diffA)
	sort.Strings(diffB)

	base := strings.Join(common, " ")
	s1 := joinNonEmpty(base, strings.Join(diffA, " "))
	s2 := joinNonEmpty(base, strings.Join(diffB, " "))

	best := Ratio(base, s1)
	if r := Ratio(base, s2); r > best {
		best = r
	}
	if r := Ratio(s1, s2); r > best {
		best = r
	}
	return best
}

// tokenSet lowercases s and splits it into its unique alphanumeric words.
func tokenSet(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isAlnum(r)
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z'
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
