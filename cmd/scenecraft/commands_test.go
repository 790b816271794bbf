package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"scenecraft/internal/project"
	"scenecraft/internal/services"
	"scenecraft/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.cfg.Paths.OutputDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestAlignJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	script, stamps, _ := env.writeNarration(t)

	out, _, err := runCLI(t, []string{"align", "--script", script, "--timestamps", stamps, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	scenes := decodeJSON[[]sceneJSON](t, out)
	if len(scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %+v", scenes)
	}
	if scenes[0].Text != "Hello there." || scenes[1].Text != "General Kenobi." {
		t.Fatalf("unexpected scene text %+v", scenes)
	}
	if scenes[1].StartMS != 1000 || scenes[1].EndMS != 1900 {
		t.Fatalf("unexpected second scene timing %+v", scenes[1])
	}
}

func TestAlignRequiresScript(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"align", "--timestamps", "x.json"}, env.configPath)
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
	if services.ExitCode(err) != 2 {
		t.Fatalf("expected exit code 2, got %d", services.ExitCode(err))
	}
}

func TestBuildInspectAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	script, stamps, audio := env.writeNarration(t)

	out, _, err := runCLI(t, []string{"build", "--script", script, "--timestamps", stamps, "--audio", audio, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	outcome := decodeJSON[outcomeJSON](t, out)
	wantPath := filepath.Join(env.cfg.Paths.OutputDir, "story.zip")
	if outcome.Path != wantPath || outcome.Clips != 2 || outcome.Operation != "build" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	out, _, err = runCLI(t, []string{"inspect", outcome.Path, "--entries", "--json"}, "")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	summary := decodeJSON[inspectJSON](t, out)
	if !summary.Valid || summary.Clips != 2 || summary.Files != 1 || summary.Words != 4 || summary.SpokenMS != 1600 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Version != project.SchemaVersion {
		t.Fatalf("expected version %s, got %s", project.SchemaVersion, summary.Version)
	}
	if len(summary.Entries) != 2 || summary.Entries[0].Name != project.DocumentName {
		t.Fatalf("unexpected entries %+v", summary.Entries)
	}

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	entries := decodeJSON[[]historyJSON](t, out)
	if len(entries) != 1 || entries[0].RequestID != outcome.RequestID || entries[0].Output != wantPath {
		t.Fatalf("unexpected history %+v", entries)
	}

	out, _, err = runCLI(t, []string{"history", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Removed 1 history entries")
}

func TestAutofillInjectsNumberedImage(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithoutHistory())
	script, stamps, audio := env.writeNarration(t)
	archive := filepath.Join(env.baseDir, "story.zip")
	if _, _, err := runCLI(t, []string{"build", "--script", script, "--timestamps", stamps, "--audio", audio, "-o", archive}, env.configPath); err != nil {
		t.Fatalf("build: %v", err)
	}

	image := filepath.Join(env.baseDir, "inject", "002_wide.png")
	testsupport.WriteFile(t, image, 16)
	stray := filepath.Join(env.baseDir, "inject", "009_late.png")
	testsupport.WriteFile(t, stray, 16)

	out, _, err := runCLI(t, []string{"autofill", archive, image, stray}, env.configPath)
	if err != nil {
		t.Fatalf("autofill: %v", err)
	}
	requireContains(t, out, "Injected: 1")
	requireContains(t, out, "1 warning(s)")
	requireContains(t, out, "009_late.png")

	doc, err := project.Load(archive)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	clips := doc.Clips()
	if len(clips[0].AssetIDs) != 0 || len(clips[1].AssetIDs) != 1 {
		t.Fatalf("image should land on the second clip")
	}
}

func TestAutofillRequiresMedia(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"autofill", filepath.Join(env.baseDir, "missing.zip")}, env.configPath)
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestInspectCorruptArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	testsupport.WriteBytes(t, path, []byte("not a zip"))
	_, _, err := runCLI(t, []string{"inspect", path}, "")
	if services.ExitCode(err) != 3 {
		t.Fatalf("expected corrupt exit code, got %v", err)
	}
}

func TestMatchTable(t *testing.T) {
	env := setupCLITestEnv(t)
	audio := filepath.Join(env.baseDir, "audio")
	testsupport.WriteFile(t, filepath.Join(audio, "01.mp3"), 4)
	testsupport.WriteFile(t, filepath.Join(audio, "02.mp3"), 4)
	visuals := filepath.Join(env.baseDir, "visuals")
	testsupport.WriteFile(t, filepath.Join(visuals, "2.jpg"), 4)

	out, _, err := runCLI(t, []string{"match", "--audio", audio, "--visuals", visuals}, env.configPath)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	requireContains(t, out, "01.mp3")
	requireContains(t, out, "2.jpg")
}

func TestFormatMS(t *testing.T) {
	cases := map[int64]string{0: "0:00.000", 1500: "0:01.500", 61001: "1:01.001", -5: "0:00.000"}
	for in, want := range cases {
		if got := formatMS(in); got != want {
			t.Fatalf("formatMS(%d) = %q, want %q", in, got, want)
		}
	}
}
