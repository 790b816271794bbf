package alignment

import "scenecraft/internal/transcript"

// Scene is a script-authoritative narration segment with derived timing.
type Scene struct {
	Index int
	// Text is verbatim script text, never recognized text.
	Text       string
	StartMS    int64
	EndMS      int64
	Timestamps []transcript.WordTimestamp
	// Confidence is the cosine similarity between Text and the consumed
	// recognized words, in [0, 1].
	Confidence float64
	// Fallback is set when the timestamps were allocated proportionally
	// because no token matched.
	Fallback bool
}

// DurationMS returns the scene length in milliseconds.
func (s Scene) DurationMS() int64 {
	return s.EndMS - s.StartMS
}
