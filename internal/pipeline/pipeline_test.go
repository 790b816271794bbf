package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"scenecraft/internal/history"
	"scenecraft/internal/ids"
	"scenecraft/internal/media/ffprobe"
	"scenecraft/internal/pipeline"
	"scenecraft/internal/project"
	"scenecraft/internal/services"
	"scenecraft/internal/testsupport"
	"scenecraft/internal/transcript"
)

func writeTimestamps(t *testing.T, path string, words []transcript.WordTimestamp) {
	t.Helper()
	data, err := json.Marshal(words)
	if err != nil {
		t.Fatal(err)
	}
	testsupport.WriteBytes(t, path, data)
}

func newRunner(t *testing.T) (*pipeline.Runner, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return &pipeline.Runner{
		Config:  cfg,
		Prober:  &testsupport.FakeProber{},
		IDs:     ids.NewSequence(),
		History: testsupport.MustOpenHistory(t, cfg),
	}, testsupport.BaseDir(cfg)
}

func TestBuildFromScriptRecordsHistory(t *testing.T) {
	runner, base := newRunner(t)
	script := filepath.Join(base, "script.txt")
	testsupport.WriteBytes(t, script, []byte("Hello there.\n\nGeneral Kenobi.\n"))
	stamps := filepath.Join(base, "words.json")
	writeTimestamps(t, stamps, testsupport.Timestamps(0, "Hello", "there.", "General", "Kenobi."))
	audio := filepath.Join(base, "narration.wav")
	testsupport.WriteFile(t, audio, 32)
	visuals := filepath.Join(base, "visuals")
	testsupport.WriteFile(t, filepath.Join(visuals, "02.png"), 8)
	testsupport.WriteFile(t, filepath.Join(visuals, "07.png"), 8)

	ctx := services.WithRequestID(context.Background(), "req-1")
	out := filepath.Join(base, "output", "story.zip")
	outcome, err := runner.BuildFromScript(ctx, pipeline.ScriptRequest{
		ScriptPath:     script,
		TimestampsPath: stamps,
		AudioPath:      audio,
		VisualDir:      visuals,
		Output:         out,
	})
	if err != nil {
		t.Fatalf("BuildFromScript: %v", err)
	}
	if outcome.Clips != 2 || outcome.RequestID != "req-1" || outcome.Operation != history.OperationBuild {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if len(outcome.Warnings) != 1 || !strings.HasSuffix(outcome.Warnings[0].Subject, "07.png") {
		t.Fatalf("expected one out-of-range visual warning, got %+v", outcome.Warnings)
	}

	loaded, err := project.Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	clips := loaded.Clips()
	if len(clips[0].AssetIDs) != 0 || len(clips[1].AssetIDs) != 1 {
		t.Fatalf("visual should attach to the second scene only")
	}
	if loaded.Bookkeeping.RequestID != "req-1" {
		t.Fatalf("request id not recorded in bookkeeping")
	}

	entries, err := runner.History.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Output != out || entries[0].Scenes != 2 || entries[0].Warnings != 1 {
		t.Fatalf("history entries %+v", entries)
	}
}

func TestBuildFromScriptFailureIsNotRecorded(t *testing.T) {
	runner, base := newRunner(t)
	script := filepath.Join(base, "script.txt")
	testsupport.WriteBytes(t, script, []byte("   \n\n"))
	stamps := filepath.Join(base, "words.json")
	writeTimestamps(t, stamps, testsupport.Timestamps(0, "x"))

	_, err := runner.BuildFromScript(context.Background(), pipeline.ScriptRequest{
		ScriptPath:     script,
		TimestampsPath: stamps,
		AudioPath:      filepath.Join(base, "a.wav"),
		Output:         filepath.Join(base, "o.zip"),
	})
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
	entries, _ := runner.History.List(context.Background(), 0)
	if len(entries) != 0 {
		t.Fatalf("failed runs must not be recorded: %+v", entries)
	}
}

func TestBuildFromSets(t *testing.T) {
	runner, base := newRunner(t)
	audioDir := filepath.Join(base, "audio")
	stampDir := filepath.Join(base, "timestamps")
	visualDir := filepath.Join(base, "visuals")
	testsupport.WriteFile(t, filepath.Join(audioDir, "001.wav"), 8)
	testsupport.WriteFile(t, filepath.Join(audioDir, "002.wav"), 8)
	testsupport.WriteFile(t, filepath.Join(audioDir, "003.wav"), 8)
	writeTimestamps(t, filepath.Join(stampDir, "1.json"), testsupport.Timestamps(0, "first", "line"))
	writeTimestamps(t, filepath.Join(stampDir, "2.json"), testsupport.Timestamps(0, "second", "line"))
	testsupport.WriteBytes(t, filepath.Join(stampDir, "3.json"), []byte("{not json"))
	testsupport.WriteFile(t, filepath.Join(visualDir, "2.mp4"), 8)
	script := filepath.Join(base, "script.txt")
	testsupport.WriteBytes(t, script, []byte("First line.\n\nSecond line."))

	out := filepath.Join(base, "output", "batch.zip")
	outcome, err := runner.BuildFromSets(context.Background(), pipeline.BatchRequest{
		AudioDir:     audioDir,
		TimestampDir: stampDir,
		VisualDir:    visualDir,
		ScriptPath:   script,
		Output:       out,
	})
	if err != nil {
		t.Fatalf("BuildFromSets: %v", err)
	}
	if outcome.Clips != 2 {
		t.Fatalf("expected 2 clips, got %d", outcome.Clips)
	}
	if len(outcome.Warnings) != 1 || !strings.HasSuffix(outcome.Warnings[0].Subject, "3.json") {
		t.Fatalf("expected a warning for the unusable timestamp file, got %+v", outcome.Warnings)
	}

	loaded, err := project.Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	clips := loaded.Clips()
	if clips[0].Caption != "First line." || clips[1].Caption != "Second line." {
		t.Fatalf("captions %q / %q", clips[0].Caption, clips[1].Caption)
	}
	if clips[0].Audio.MediaID == clips[1].Audio.MediaID {
		t.Fatalf("each set has its own audio file")
	}
	if len(clips[1].AssetIDs) != 1 {
		t.Fatalf("visual 2.mp4 should attach to the second clip")
	}
}

func TestBuildFromSetsWithoutMatches(t *testing.T) {
	runner, base := newRunner(t)
	_, err := runner.BuildFromSets(context.Background(), pipeline.BatchRequest{
		AudioDir: filepath.Join(base, "nothing-here"),
		Output:   filepath.Join(base, "o.zip"),
	})
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
}

func TestBuildFromSetsSkipsSetWithUnknownDuration(t *testing.T) {
	runner, base := newRunner(t)
	audioDir := filepath.Join(base, "audio")
	first := filepath.Join(audioDir, "1.wav")
	second := filepath.Join(audioDir, "2.wav")
	testsupport.WriteFile(t, first, 8)
	testsupport.WriteFile(t, second, 8)
	runner.Prober = &testsupport.FakeProber{Audio: map[string]ffprobe.AudioInfo{
		second: {Duration: 3.5, SampleRate: 48000, Channels: 2},
	}}
	script := filepath.Join(base, "script.txt")
	testsupport.WriteBytes(t, script, []byte("First.\n\nSecond."))

	outcome, err := runner.BuildFromSets(context.Background(), pipeline.BatchRequest{
		AudioDir:   audioDir,
		ScriptPath: script,
		Output:     filepath.Join(base, "output", "silent.zip"),
	})
	if err != nil {
		t.Fatalf("BuildFromSets: %v", err)
	}
	if outcome.Clips != 1 || len(outcome.Scenes) != 1 {
		t.Fatalf("expected only the probed set to build, got %d clips", outcome.Clips)
	}
	if got := outcome.Scenes[0]; got.Text != "Second." || got.StartMS != 0 || got.EndMS != 3500 {
		t.Fatalf("unexpected scene %+v", got)
	}
	if len(outcome.Warnings) != 1 || outcome.Warnings[0].Subject != first ||
		!strings.Contains(outcome.Warnings[0].Message, "duration unknown") {
		t.Fatalf("expected a skip warning for %s, got %+v", first, outcome.Warnings)
	}
}

func TestBuildFromSetsWithoutScriptLeavesCaptionEmpty(t *testing.T) {
	runner, base := newRunner(t)
	audioDir := filepath.Join(base, "audio")
	stampDir := filepath.Join(base, "timestamps")
	audio := filepath.Join(audioDir, "1.wav")
	testsupport.WriteFile(t, audio, 8)
	writeTimestamps(t, filepath.Join(stampDir, "1.json"), testsupport.Timestamps(0, "General", "Kenobi."))

	out := filepath.Join(base, "output", "unscripted.zip")
	outcome, err := runner.BuildFromSets(context.Background(), pipeline.BatchRequest{
		AudioDir:     audioDir,
		TimestampDir: stampDir,
		Output:       out,
	})
	if err != nil {
		t.Fatalf("BuildFromSets: %v", err)
	}
	if len(outcome.Scenes) != 1 || outcome.Scenes[0].Text != "" || outcome.Scenes[0].EndMS != 900 {
		t.Fatalf("unexpected scenes %+v", outcome.Scenes)
	}
	if len(outcome.Warnings) != 1 || outcome.Warnings[0].Subject != audio ||
		!strings.Contains(outcome.Warnings[0].Message, "caption left empty") ||
		!strings.Contains(outcome.Warnings[0].Message, "General Kenobi.") {
		t.Fatalf("expected one empty-caption warning, got %+v", outcome.Warnings)
	}

	loaded, err := project.Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	clips := loaded.Clips()
	if len(clips) != 1 || clips[0].Caption != "" {
		t.Fatalf("recognized text must not become the caption: %+v", clips)
	}
	if len(clips[0].Words) != 3 || clips[0].Words[0].Text != "General" {
		t.Fatalf("clip words should still follow the timestamps: %+v", clips[0].Words)
	}
}

func TestAutofillFlow(t *testing.T) {
	runner, base := newRunner(t)
	script := filepath.Join(base, "script.txt")
	testsupport.WriteBytes(t, script, []byte("One.\n\nTwo.\n\nThree."))
	stamps := filepath.Join(base, "words.json")
	writeTimestamps(t, stamps, testsupport.Timestamps(0, "One.", "Two.", "Three."))
	audio := filepath.Join(base, "n.wav")
	testsupport.WriteFile(t, audio, 8)
	archive := filepath.Join(base, "output", "text.zip")
	if _, err := runner.BuildFromScript(context.Background(), pipeline.ScriptRequest{
		ScriptPath: script, TimestampsPath: stamps, AudioPath: audio, Output: archive,
	}); err != nil {
		t.Fatalf("BuildFromScript: %v", err)
	}

	mediaDir := filepath.Join(base, "fill")
	testsupport.WriteFile(t, filepath.Join(mediaDir, "001_a.png"), 8)
	testsupport.WriteFile(t, filepath.Join(mediaDir, "050_b.png"), 8)
	outcome, err := runner.Autofill(context.Background(), pipeline.AutofillRequest{
		Archive:  archive,
		MediaDir: mediaDir,
		Output:   filepath.Join(base, "output", "filled.zip"),
	})
	if err != nil {
		t.Fatalf("Autofill: %v", err)
	}
	if outcome.Injected != 1 || len(outcome.Warnings) != 1 || outcome.Clips != 3 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	entries, err := runner.History.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Operation != history.OperationAutofill {
		t.Fatalf("history %+v", entries)
	}
}
