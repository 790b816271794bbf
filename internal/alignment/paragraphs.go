package alignment

import (
	"regexp"
	"strings"

	"scenecraft/internal/textutil"
)

var blankLinePattern = regexp.MustCompile(`\n[ \t]*\n`)

// SplitParagraphs normalizes script and returns its blank-line separated
// paragraphs, trimmed, in order. Blank input yields nil.
func SplitParagraphs(script string) []string {
	normalized := textutil.NormalizeScript(script)
	if normalized == "" {
		return nil
	}
	var paragraphs []string
	for _, part := range blankLinePattern.Split(normalized, -1) {
		if p := strings.TrimSpace(part); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// splitText breaks text into verbatim word-boundary pieces of at most
// maxChars runes. A single word longer than maxChars forms its own piece.
func splitText(text string, maxChars int) []string {
	spans := textutil.WordSpans(text)
	if len(spans) == 0 || maxChars <= 0 {
		return []string{text}
	}
	var pieces []string
	start, end := spans[0].Start, spans[0].End
	for _, span := range spans[1:] {
		if textutil.RuneLen(text[start:span.End]) <= maxChars {
			end = span.End
			continue
		}
		pieces = append(pieces, text[start:end])
		start, end = span.Start, span.End
	}
	return append(pieces, text[start:end])
}
