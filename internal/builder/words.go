package builder

import (
	"strings"

	"scenecraft/internal/ids"
	"scenecraft/internal/project"
	"scenecraft/internal/textutil"
	"scenecraft/internal/transcript"
)

// ClipWords converts a scene's timestamps into clip words. Overlapping
// timestamps are clamped to start at the previous end. Punctuation-only
// tokens are appended to the preceding word's text. A silence word covers
// every gap of at least silenceGapMS, and the list always ends with a
// scene_end at the last content end (or at fallbackStartMS when there is no
// content).
func ClipWords(gen ids.Generator, timestamps []transcript.WordTimestamp, fallbackStartMS, silenceGapMS int64) []project.Word {
	words := make([]project.Word, 0, len(timestamps)+1)
	end := fallbackStartMS
	content := false

	for _, ts := range timestamps {
		text := strings.TrimSpace(ts.Text)
		if textutil.FoldToken(text) == "" {
			if content && text != "" {
				words[len(words)-1].Text += text
			}
			continue
		}

		start := ts.StartMS
		if content && start < end {
			start = end
		}
		stop := max(ts.EndMS, start)

		if content && silenceGapMS > 0 && start-end >= silenceGapMS {
			words = append(words, project.Word{
				ID:         gen.NewID("word"),
				StartMS:    end,
				DurationMS: start - end,
				Kind:       project.WordSilence,
			})
		}
		words = append(words, project.Word{
			ID:         gen.NewID("word"),
			Text:       text,
			StartMS:    start,
			DurationMS: stop - start,
			Kind:       project.WordContent,
		})
		end = stop
		content = true
	}

	return append(words, project.Word{
		ID:      gen.NewID("word"),
		StartMS: end,
		Kind:    project.WordSceneEnd,
	})
}
