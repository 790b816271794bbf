package autofill_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"scenecraft/internal/alignment"
	"scenecraft/internal/autofill"
	"scenecraft/internal/builder"
	"scenecraft/internal/ids"
	"scenecraft/internal/media/ffprobe"
	"scenecraft/internal/project"
	"scenecraft/internal/services"
	"scenecraft/internal/testsupport"
)

// buildThreeClipArchive writes a text-only archive with three clips.
func buildThreeClipArchive(t *testing.T, dir string) string {
	t.Helper()
	audio := filepath.Join(dir, "narration.wav")
	testsupport.WriteFile(t, audio, 128)
	ts := testsupport.Timestamps(0, "One", "fish.", "Two", "fish.", "Red", "fish.")
	scenes, err := alignment.Align("One fish.\n\nTwo fish.\n\nRed fish.", ts, 0)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	input := make([]builder.SceneMedia, len(scenes))
	for i, s := range scenes {
		input[i] = builder.SceneMedia{Scene: s, AudioPath: audio}
	}
	archive := filepath.Join(dir, "text-only.zip")
	b := &builder.Builder{IDs: ids.NewSequence()}
	if _, err := b.Build(context.Background(), input, project.Canvas{Width: 1920, Height: 1080}, archive); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return archive
}

func newEngine(t *testing.T, workRoot string, prober ffprobe.Prober) *autofill.Engine {
	t.Helper()
	return &autofill.Engine{WorkRoot: workRoot, IDs: ids.NewSequence(), Prober: prober}
}

func readMembers(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer zr.Close()
	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestAutofillInjectsByOrdinalAndIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	archive := buildThreeClipArchive(t, dir)
	mediaDir := filepath.Join(dir, "media")
	first := filepath.Join(mediaDir, "001_a.png")
	outOfRange := filepath.Join(mediaDir, "050_b.png")
	testsupport.WriteBytes(t, first, []byte("png-bytes"))
	testsupport.WriteBytes(t, outOfRange, []byte("other"))

	workRoot := filepath.Join(dir, "work")
	dst := filepath.Join(dir, "filled.zip")
	result, err := newEngine(t, workRoot, nil).Autofill(context.Background(), archive, []string{outOfRange, first}, dst)
	if err != nil {
		t.Fatalf("Autofill: %v", err)
	}
	if result.Injected != 1 {
		t.Fatalf("injected = %d, want 1", result.Injected)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Subject != outOfRange {
		t.Fatalf("expected exactly one warning for %s, got %+v", outOfRange, result.Warnings)
	}

	loaded, err := project.Load(dst)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := loaded.Validate(); err != nil {
		t.Fatalf("output invalid: %v", err)
	}
	clips := loaded.Clips()
	if len(clips[0].AssetIDs) != 1 || len(clips[1].AssetIDs) != 0 || len(clips[2].AssetIDs) != 0 {
		t.Fatalf("asset ids per clip: %v / %v / %v", clips[0].AssetIDs, clips[1].AssetIDs, clips[2].AssetIDs)
	}
	asset := loaded.Assets[clips[0].AssetIDs[0]]
	if asset.Kind != project.AssetImage || asset.Size.Width != 0.8 || asset.Size.Height != 0.8 || asset.Position.X != 0.5 {
		t.Fatalf("image asset %+v", asset)
	}
	file, ok := loaded.File(asset.MediaID)
	if !ok || file.Kind != project.FileKindImage || file.Name != "001_a.png" {
		t.Fatalf("file entry %+v", file)
	}

	members := readMembers(t, dst)
	if members[file.Path] != "png-bytes" {
		t.Fatalf("media entry %s = %q", file.Path, members[file.Path])
	}

	entries, err := os.ReadDir(workRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("working directory not removed: %v", entries)
	}
}

func TestAutofillCarriesExistingMembersVerbatim(t *testing.T) {
	dir := t.TempDir()
	archive := buildThreeClipArchive(t, dir)
	before := readMembers(t, archive)

	video := filepath.Join(dir, "2.mp4")
	testsupport.WriteBytes(t, video, []byte("mp4"))
	prober := &testsupport.FakeProber{Video: map[string]ffprobe.VideoInfo{video: {Width: 640, Height: 360, FrameRate: 24, Duration: 3}}}
	dst := filepath.Join(dir, "filled.zip")
	if _, err := newEngine(t, filepath.Join(dir, "work"), prober).Autofill(context.Background(), archive, []string{video}, dst); err != nil {
		t.Fatalf("Autofill: %v", err)
	}

	after := readMembers(t, dst)
	for name, body := range before {
		if name == project.DocumentName {
			continue
		}
		if after[name] != body {
			t.Fatalf("member %s changed", name)
		}
	}
	if len(after) != len(before)+1 {
		t.Fatalf("expected one new member, got %d -> %d", len(before), len(after))
	}

	loaded, err := project.Load(dst)
	if err != nil {
		t.Fatal(err)
	}
	clip := loaded.Clips()[1]
	asset := loaded.Assets[clip.AssetIDs[0]]
	if asset.Kind != project.AssetVideo || asset.Size.Width != 1 || asset.Size.Height != 1 {
		t.Fatalf("video asset %+v", asset)
	}
	file, _ := loaded.File(asset.MediaID)
	if file.Metadata == nil || file.Metadata.Width != 640 || file.Metadata.DurationMS != 3000 {
		t.Fatalf("video metadata %+v", file.Metadata)
	}
}

func TestAutofillVideoMetadataFallback(t *testing.T) {
	dir := t.TempDir()
	archive := buildThreeClipArchive(t, dir)
	video := filepath.Join(dir, "3.mov")
	testsupport.WriteBytes(t, video, []byte("mov"))

	result, err := newEngine(t, filepath.Join(dir, "work"), &testsupport.FakeProber{}).Autofill(context.Background(), archive, []string{video}, filepath.Join(dir, "out.zip"))
	if err != nil {
		t.Fatalf("Autofill: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("recovered probe failure should not warn: %+v", result.Warnings)
	}
	meta := result.Project.Files[len(result.Project.Files)-1].Metadata
	if meta.Width != 1920 || meta.Height != 1080 || meta.FrameRate != 30 || meta.DurationMS != 10000 {
		t.Fatalf("defaults not applied: %+v", meta)
	}
}

func TestAutofillWarnsPerFile(t *testing.T) {
	dir := t.TempDir()
	archive := buildThreeClipArchive(t, dir)
	noOrdinal := filepath.Join(dir, "cover.png")
	unsupported := filepath.Join(dir, "2.txt")
	missing := filepath.Join(dir, "3.png")
	good := filepath.Join(dir, "2.jpg")
	testsupport.WriteBytes(t, noOrdinal, []byte("x"))
	testsupport.WriteBytes(t, unsupported, []byte("x"))
	testsupport.WriteBytes(t, good, []byte("jpg"))

	result, err := newEngine(t, filepath.Join(dir, "work"), nil).Autofill(context.Background(), archive,
		[]string{noOrdinal, unsupported, missing, good}, filepath.Join(dir, "out.zip"))
	if err != nil {
		t.Fatalf("Autofill: %v", err)
	}
	if result.Injected != 1 || len(result.Warnings) != 3 {
		t.Fatalf("injected=%d warnings=%+v", result.Injected, result.Warnings)
	}
}

func TestAutofillCorruptArchiveIsFatal(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.zip")
	testsupport.WriteBytes(t, bogus, []byte("definitely not a zip"))
	workRoot := filepath.Join(dir, "work")
	dst := filepath.Join(dir, "out.zip")

	_, err := newEngine(t, workRoot, nil).Autofill(context.Background(), bogus, nil, dst)
	if !errors.Is(err, services.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if _, statErr := os.Stat(dst); !os.IsNotExist(statErr) {
		t.Fatalf("no output expected")
	}
	entries, _ := os.ReadDir(workRoot)
	if len(entries) != 0 {
		t.Fatalf("working directory left behind: %v", entries)
	}
}

func TestAutofillInPlace(t *testing.T) {
	dir := t.TempDir()
	archive := buildThreeClipArchive(t, dir)
	image := filepath.Join(dir, "3.webp")
	testsupport.WriteBytes(t, image, []byte("webp"))
	if _, err := newEngine(t, filepath.Join(dir, "work"), nil).Autofill(context.Background(), archive, []string{image}, archive); err != nil {
		t.Fatalf("Autofill: %v", err)
	}
	loaded, err := project.Load(archive)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Clips()[2].AssetIDs) != 1 {
		t.Fatalf("third clip should hold the injected image")
	}
}

const editorDocument = `{
  "version": "2.7.0",
  "canvas": {"width": 1080, "height": 1920, "background": "#101010"},
  "files": [
    {"id": "narration", "name": "voice.wav", "kind": "audio_video", "storage": "embedded",
     "path": "media/narration.wav", "size": 5,
     "metadata": {"duration_ms": 900, "sample_rate": 44100, "channels": 2, "codec": "pcm_s16le"}}
  ],
  "scenes": [
    {"id": "s1", "clips": [
      {"id": "c1", "caption": "Hello there.", "asset_ids": ["logo"],
       "audio": {"media_id": "narration", "start_ms": 0, "end_ms": 900, "gain_db": -3},
       "words": [
         {"id": "w1", "text": "Hello", "start_ms": 0, "duration_ms": 400, "kind": "content", "emphasis": true},
         {"id": "w2", "text": "there.", "start_ms": 500, "duration_ms": 400, "kind": "content"},
         {"id": "w3", "text": "", "start_ms": 900, "duration_ms": 0, "kind": "scene_end"}
       ]}
    ]}
  ],
  "assets": {
    "logo": {"id": "logo", "media_id": "narration", "position": {"x": 0.1, "y": 0.1, "anchor": "top-left"},
             "size": {"width": 0.2, "height": 0.2}, "rotation": 0, "z_index": 3, "kind": "image", "opacity": 0.5}
  },
  "style": {"caption_font": "Roboto", "font_weight": 700},
  "bookkeeping": {"generator": "editor", "app_build": "7731", "created_at": "2024-01-02T03:04:05Z"}
}`

// writeArchive zips the document plus members into path.
func writeArchive(t *testing.T, path, document string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	write := func(name, body string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(w, body); err != nil {
			t.Fatal(err)
		}
	}
	write(project.DocumentName, document)
	for name, body := range members {
		write(name, body)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestAutofillPreservesEditorFields(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "editor.zip")
	writeArchive(t, archive, editorDocument, map[string]string{"media/narration.wav": "voice"})
	image := filepath.Join(dir, "001_a.png")
	testsupport.WriteBytes(t, image, []byte("png"))

	dst := filepath.Join(dir, "out.zip")
	result, err := newEngine(t, filepath.Join(dir, "work"), nil).Autofill(context.Background(), archive, []string{image}, dst)
	if err != nil {
		t.Fatalf("Autofill: %v", err)
	}
	if result.Injected != 1 || len(result.Warnings) != 0 {
		t.Fatalf("injected=%d warnings=%+v", result.Injected, result.Warnings)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(readMembers(t, dst)[project.DocumentName]), &doc); err != nil {
		t.Fatalf("decode output document: %v", err)
	}
	if doc["version"] != "2.7.0" {
		t.Fatalf("version changed to %v", doc["version"])
	}
	canvas := doc["canvas"].(map[string]any)
	if canvas["background"] != "#101010" {
		t.Fatalf("canvas field lost: %v", canvas)
	}
	file := doc["files"].([]any)[0].(map[string]any)
	if file["metadata"].(map[string]any)["codec"] != "pcm_s16le" {
		t.Fatalf("metadata field lost: %v", file)
	}
	clip := doc["scenes"].([]any)[0].(map[string]any)["clips"].([]any)[0].(map[string]any)
	if clip["audio"].(map[string]any)["gain_db"] != -3.0 {
		t.Fatalf("audio range field lost: %v", clip["audio"])
	}
	word := clip["words"].([]any)[0].(map[string]any)
	if word["emphasis"] != true {
		t.Fatalf("word field lost: %v", word)
	}
	logo := doc["assets"].(map[string]any)["logo"].(map[string]any)
	if logo["opacity"] != 0.5 || logo["position"].(map[string]any)["anchor"] != "top-left" {
		t.Fatalf("asset fields lost: %v", logo)
	}
	style := doc["style"].(map[string]any)
	if style["font_weight"] != 700.0 || style["caption_font"] != "Roboto" {
		t.Fatalf("style fields lost: %v", style)
	}
	for _, absent := range []string{"caption_size", "caption_color", "captions_enabled"} {
		if _, ok := style[absent]; ok {
			t.Fatalf("style gained %s: %v", absent, style)
		}
	}
	book := doc["bookkeeping"].(map[string]any)
	if book["app_build"] != "7731" || book["generator"] != "editor" {
		t.Fatalf("bookkeeping fields lost: %v", book)
	}
	assetIDs := clip["asset_ids"].([]any)
	if len(assetIDs) != 2 || assetIDs[0] != "logo" {
		t.Fatalf("clip asset ids %v", assetIDs)
	}
}

func TestAutofillAvoidsUnlistedMemberNames(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "editor.zip")
	writeArchive(t, archive, editorDocument, map[string]string{
		"media/narration.wav": "voice",
		"media/media-1.png":   "orphan",
	})
	image := filepath.Join(dir, "1.png")
	testsupport.WriteBytes(t, image, []byte("fresh"))

	dst := filepath.Join(dir, "out.zip")
	result, err := newEngine(t, filepath.Join(dir, "work"), nil).Autofill(context.Background(), archive, []string{image}, dst)
	if err != nil {
		t.Fatalf("Autofill: %v", err)
	}
	if result.Injected != 1 {
		t.Fatalf("injected = %d", result.Injected)
	}
	members := readMembers(t, dst)
	if members["media/media-1.png"] != "orphan" {
		t.Fatalf("unlisted member overwritten: %q", members["media/media-1.png"])
	}
	if members["media/media-2.png"] != "fresh" {
		t.Fatalf("injected media not stored under a fresh name: %v", members)
	}
}
