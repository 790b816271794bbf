package alignment

import (
	"log/slog"

	"scenecraft/internal/logging"
	"scenecraft/internal/services"
	"scenecraft/internal/textutil"
	"scenecraft/internal/transcript"
)

const (
	// DefaultTolerance is how many characters a paragraph may exceed MaxChars
	// before it is split.
	DefaultTolerance    = 5
	DefaultWindowFactor = 3
	// DefaultMinMatchRatio is the share of paragraph tokens that must be found
	// in the window for a match to be trusted over proportional allocation.
	DefaultMinMatchRatio = 0.25
)

// Aligner holds alignment tuning. The zero value aligns without length
// limits; zero WindowFactor and MinMatchRatio take the package defaults.
type Aligner struct {
	// MaxChars bounds scene text length in runes; 0 disables splitting.
	MaxChars  int
	Tolerance int
	// WindowFactor sizes the lookahead window as a multiple of the paragraph
	// token count.
	WindowFactor  int
	MinMatchRatio float64
	Logger        *slog.Logger
}

// Align maps script paragraphs onto timestamps with default tuning.
func Align(script string, timestamps []transcript.WordTimestamp, maxChars int) ([]Scene, error) {
	return Aligner{MaxChars: maxChars, Tolerance: DefaultTolerance}.Align(script, timestamps)
}

// Align splits script into paragraphs and assigns each a contiguous run of
// timestamps. Mismatched text never fails; a blank script or an empty
// timestamp list is reported as ErrInput.
func (a Aligner) Align(script string, timestamps []transcript.WordTimestamp) ([]Scene, error) {
	paragraphs := SplitParagraphs(script)
	if len(paragraphs) == 0 {
		return nil, services.Wrap(services.ErrInput, "alignment", "align", "script is blank", nil)
	}
	if len(timestamps) == 0 {
		return nil, services.Wrap(services.ErrInput, "alignment", "align", "no timestamps to align", nil)
	}
	a = a.withDefaults()

	parts := a.partition(paragraphs, timestamps)

	scenes := make([]Scene, 0, len(paragraphs))
	cursor := timestamps[0].StartMS
	emit := func(text string, p part) {
		scene := newScene(len(scenes), text, p, cursor)
		cursor = scene.EndMS
		scenes = append(scenes, scene)
	}

	for i, paragraph := range paragraphs {
		limit := a.MaxChars + a.Tolerance
		if a.MaxChars <= 0 || textutil.RuneLen(paragraph) <= limit {
			emit(paragraph, parts[i])
			continue
		}
		pieces := splitText(paragraph, a.MaxChars)
		subParts := a.partition(pieces, parts[i].words)
		for j, piece := range pieces {
			sub := subParts[j]
			sub.fallback = sub.fallback || parts[i].fallback
			emit(piece, sub)
		}
	}

	fallbacks := 0
	for _, s := range scenes {
		if s.Fallback {
			fallbacks++
		}
	}
	a.Logger.Debug("script aligned",
		logging.Int("paragraphs", len(paragraphs)),
		logging.Int("scenes", len(scenes)),
		logging.Int("timestamps", len(timestamps)),
		logging.Int("fallback_scenes", fallbacks),
	)
	return scenes, nil
}

func (a Aligner) withDefaults() Aligner {
	if a.Tolerance < 0 {
		a.Tolerance = 0
	}
	if a.WindowFactor <= 0 {
		a.WindowFactor = DefaultWindowFactor
	}
	if a.MinMatchRatio <= 0 {
		a.MinMatchRatio = DefaultMinMatchRatio
	}
	if a.Logger == nil {
		a.Logger = logging.NewNop()
	}
	return a
}

type part struct {
	words    []transcript.WordTimestamp
	fallback bool
}

// partition splits timestamps into len(texts) contiguous runs covering the
// input exactly once.
func (a Aligner) partition(texts []string, timestamps []transcript.WordTimestamp) []part {
	parts := make([]part, len(texts))
	remainingChars := 0
	for _, t := range texts {
		remainingChars += textutil.RuneLen(t)
	}

	pos := 0
	for i, text := range texts {
		remaining := len(timestamps) - pos
		chars := textutil.RuneLen(text)
		later := len(texts) - 1 - i

		var take int
		switch {
		case later == 0:
			take = remaining
		case remaining == 0:
			take = 0
		default:
			var ok bool
			take, ok = matchTake(textutil.Words(text), timestamps[pos:], a.WindowFactor, a.MinMatchRatio)
			if !ok {
				take = proportionalTake(remaining, chars, remainingChars)
				parts[i].fallback = true
			}
			// Leave one timestamp for each following text while supply lasts.
			take = min(take, max(1, remaining-later))
		}

		parts[i].words = timestamps[pos : pos+take]
		pos += take
		remainingChars -= chars
	}
	return parts
}

func newScene(index int, text string, p part, cursor int64) Scene {
	scene := Scene{
		Index:      index,
		Text:       text,
		StartMS:    cursor,
		EndMS:      cursor,
		Timestamps: append([]transcript.WordTimestamp(nil), p.words...),
		Fallback:   p.fallback,
	}
	if len(p.words) > 0 {
		scene.StartMS, scene.EndMS = transcript.Span(p.words)
		tokens := make([]string, 0, len(p.words))
		for _, w := range p.words {
			tokens = append(tokens, textutil.FoldToken(w.Text))
		}
		scene.Confidence = textutil.CosineSimilarity(textutil.NewFingerprint(text), textutil.FingerprintTokens(tokens))
	}
	return scene
}
