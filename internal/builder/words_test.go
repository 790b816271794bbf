package builder

import (
	"testing"

	"scenecraft/internal/ids"
	"scenecraft/internal/project"
	"scenecraft/internal/transcript"
)

func TestClipWords(t *testing.T) {
	ts := []transcript.WordTimestamp{
		{Text: "Hello", StartMS: 0, EndMS: 400},
		{Text: ",", StartMS: 400, EndMS: 410},
		{Text: "there", StartMS: 350, EndMS: 700},
		{Text: "again", StartMS: 1200, EndMS: 1500},
		{Text: "", StartMS: 1500, EndMS: 1500},
	}
	words := ClipWords(ids.NewSequence(), ts, 0, 300)

	want := []struct {
		text  string
		start int64
		dur   int64
		kind  project.WordKind
	}{
		{"Hello,", 0, 400, project.WordContent},
		{"there", 400, 300, project.WordContent},
		{"", 700, 500, project.WordSilence},
		{"again", 1200, 300, project.WordContent},
		{"", 1500, 0, project.WordSceneEnd},
	}
	if len(words) != len(want) {
		t.Fatalf("got %d words: %+v", len(words), words)
	}
	for i, w := range want {
		got := words[i]
		if got.Text != w.text || got.StartMS != w.start || got.DurationMS != w.dur || got.Kind != w.kind {
			t.Errorf("word %d = %+v, want %+v", i, got, w)
		}
	}
	seen := map[string]bool{}
	for _, w := range words {
		if seen[w.ID] {
			t.Fatalf("duplicate id %s", w.ID)
		}
		seen[w.ID] = true
	}
}

func TestClipWordsShortGapHasNoSilence(t *testing.T) {
	ts := []transcript.WordTimestamp{
		{Text: "a", StartMS: 0, EndMS: 100},
		{Text: "b", StartMS: 399, EndMS: 500},
	}
	words := ClipWords(ids.NewSequence(), ts, 0, 300)
	if len(words) != 3 {
		t.Fatalf("expected two words plus scene_end, got %+v", words)
	}
}

func TestClipWordsLeadingPunctuationDropped(t *testing.T) {
	ts := []transcript.WordTimestamp{{Text: "...", StartMS: 0, EndMS: 10}}
	words := ClipWords(ids.NewSequence(), ts, 250, 300)
	if len(words) != 1 || words[0].Kind != project.WordSceneEnd || words[0].StartMS != 250 {
		t.Fatalf("unexpected words %+v", words)
	}
}
