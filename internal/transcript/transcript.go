// Package transcript normalizes ASR word-timestamp files into the single
// WordTimestamp shape the rest of scenecraft consumes.
//
// Three item shapes are recognized, each in JSON or YAML:
//
//	{"text": "hi", "start_ms": 0, "end_ms": 420}       milliseconds
//	{"word": "hi", "start": 0.0, "end": 0.42}          seconds
//	{"text": "hi", "startTime": 0, "duration": 420}    milliseconds
//
// Items may appear as a bare list, under a "words" or "timestamps" key, or
// nested in whisperx-style {"segments": [{"words": [...]}]}.
package transcript

import "strings"

// WordTimestamp is one recognized token with its time range in milliseconds.
// Text may be empty or punctuation only.
type WordTimestamp struct {
	Text    string `json:"text"`
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
}

// FullText joins the non-empty token texts with single spaces.
func FullText(words []WordTimestamp) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if text := strings.TrimSpace(w.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Span returns the start of the first and end of the last timestamp.
func Span(words []WordTimestamp) (startMS, endMS int64) {
	if len(words) == 0 {
		return 0, 0
	}
	return words[0].StartMS, words[len(words)-1].EndMS
}
