package alignment

import (
	"math"

	"scenecraft/internal/textutil"
	"scenecraft/internal/transcript"
)

// fuzzyMinRunes is the shortest token length for which a one-rune edit still
// counts as a match.
const fuzzyMinRunes = 5

func tokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	if textutil.RuneLen(a) < fuzzyMinRunes || textutil.RuneLen(b) < fuzzyMinRunes {
		return false
	}
	return textutil.WithinOneEdit(a, b)
}

// matchTake returns how many leading timestamps of rest belong to a text with
// the given folded tokens. It runs an LCS between tokens and a window of
// windowFactor*len(tokens) timestamps and returns the smallest window prefix
// that attains the maximal common subsequence, extended over any
// punctuation-only timestamps that immediately follow. ok is false when
// fewer than minRatio of the tokens matched.
func matchTake(tokens []string, rest []transcript.WordTimestamp, windowFactor int, minRatio float64) (int, bool) {
	n := len(tokens)
	if n == 0 || len(rest) == 0 {
		return 0, false
	}
	if windowFactor < 1 {
		windowFactor = 1
	}
	m := min(windowFactor*n, len(rest))

	window := make([]string, m)
	for j := 0; j < m; j++ {
		window[j] = textutil.FoldToken(rest[j].Text)
	}

	// prev/cur hold LCS lengths of tokens[:i] against window[:j]; lastRow
	// keeps row n so the earliest j reaching the maximum can be read off.
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for i := 1; i <= n; i++ {
		cur[0] = 0
		for j := 1; j <= m; j++ {
			switch {
			case tokensMatch(tokens[i-1], window[j-1]):
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	lastRow := prev

	best := lastRow[m]
	if best == 0 || float64(best) < minRatio*float64(n) {
		return 0, false
	}
	take := m
	for j := 1; j <= m; j++ {
		if lastRow[j] == best {
			take = j
			break
		}
	}
	for take < len(rest) && textutil.FoldToken(rest[take].Text) == "" {
		take++
	}
	return take, true
}

// proportionalTake allocates remaining timestamps in proportion to the share
// of the remaining script characters this text represents, clamped to
// [1, remaining].
func proportionalTake(remaining, chars, remainingChars int) int {
	if remaining <= 0 {
		return 0
	}
	take := 1
	if remainingChars > 0 {
		take = int(math.Round(float64(remaining) * float64(chars) / float64(remainingChars)))
	}
	return max(1, min(take, remaining))
}
