package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeScript converts text to NFC, unifies line endings, and trims
// surrounding whitespace. Interior text is otherwise preserved verbatim.
func NormalizeScript(text string) string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}

// FoldToken returns the comparable form of a single word: case-folded with
// every rune that is not a letter or digit removed. Punctuation-only input
// yields "".
func FoldToken(word string) string {
	folded := cases.Fold().String(norm.NFC.String(word))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Words splits text on whitespace and returns the non-empty folded tokens.
func Words(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if token := FoldToken(field); token != "" {
			out = append(out, token)
		}
	}
	return out
}

// Span is a whitespace-delimited word located by byte offsets into its source.
type Span struct {
	Start int
	End   int
}

// WordSpans returns the byte ranges of whitespace-separated words in text.
func WordSpans(text string) []Span {
	var spans []Span
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, Span{Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, Span{Start: start, End: len(text)})
	}
	return spans
}

// RuneLen returns the number of characters in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// WithinOneEdit reports whether a and b differ by at most one rune insertion,
// deletion, or substitution.
func WithinOneEdit(a, b string) bool {
	if a == b {
		return true
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(ra)-len(rb) > 1 {
		return false
	}
	i, j := 0, 0
	edits := 0
	for i < len(ra) && j < len(rb) {
		if ra[i] == rb[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if len(ra) == len(rb) {
			j++
		}
		i++
	}
	return edits+(len(ra)-i) <= 1
}
