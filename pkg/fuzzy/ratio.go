// Package fuzzy implements the difflib-based string similarity scores used by
// the record matcher.
package fuzzy

import (
	"math"

	"github.com/pmezard/go-difflib/difflib"
)

// perfectRatio is the cut-off above which a window is treated as a full match.
const perfectRatio = 0.995

// PartialRatio scores the best alignment of the shorter string against every
// window of the longer string that starts at a matching block. The result is
// in [0,100]; identical inputs score 100 and an empty input scores 0.
func PartialRatio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	shorter, longer := split(a), split(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	best := 0.0
	matcher := difflib.NewMatcher(shorter, longer)
	for _, block := range matcher.GetMatchingBlocks() {
		start := block.B - block.A
		if start < 0 {
			start = 0
		}
		end := start + len(shorter)
		if start > len(longer) {
			start = len(longer)
		}
		if end > len(longer) {
			end = len(longer)
		}

		r := difflib.NewMatcher(shorter, longer[start:end]).Ratio()
		if r > perfectRatio {
			return 100
		}
		if r > best {
			best = r
		}
	}
	return score(best)
}

func score(ratio float64) int {
	return int(math.RoundToEven(100 * ratio))
}

func split(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
