package mediaset

import (
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestOrdinal(t *testing.T) {
	tests := []struct {
		path string
		want int
		ok   bool
	}{
		{"/audio/001_intro.wav", 1, true},
		{"scene-12-final.png", 12, true},
		{"/dir/42/clip.mp4", 0, false},
		{"v2/7.json", 7, true},
		{"take3_v2.wav", 3, true},
		{"intro.wav", 0, false},
		{"0050.mp3", 50, true},
		{"99999999999999999999999.wav", 0, false},
	}
	for _, tc := range tests {
		got, ok := Ordinal(tc.path)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Ordinal(%q) = %d,%v want %d,%v", tc.path, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMatchIntersectsAudioAndTimestamps(t *testing.T) {
	audio := []string{"a/1.wav", "a/2.wav", "a/3.wav"}
	timestamps := []string{"t/01.json", "t/03.json", "t/04.json"}
	visuals := []string{"v/3.png", "v/4.mp4"}

	result := Match(audio, timestamps, visuals)
	want := []MediaSet{
		{Index: 1, AudioPath: "a/1.wav", TimestampPath: "t/01.json"},
		{Index: 3, AudioPath: "a/3.wav", TimestampPath: "t/03.json", VisualPath: "v/3.png"},
	}
	if !reflect.DeepEqual(result.Sets, want) {
		t.Fatalf("sets = %+v, want %+v", result.Sets, want)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Subject != "a/2.wav" {
		t.Fatalf("expected a single warning for a/2.wav, got %+v", result.Warnings)
	}
}

func TestMatchWithoutTimestampFolderUsesAudioKeys(t *testing.T) {
	result := Match([]string{"b/2.wav", "b/1.wav"}, nil, nil)
	if len(result.Sets) != 2 || result.Sets[0].Index != 1 || result.Sets[1].Index != 2 {
		t.Fatalf("unexpected sets %+v", result.Sets)
	}
	if result.Sets[0].HasTimestamps() || result.Sets[0].VisualPath != "" {
		t.Fatalf("no optional paths expected, got %+v", result.Sets[0])
	}
}

func TestMatchSuppliedButEmptyTimestampsMatchesNothing(t *testing.T) {
	result := Match([]string{"a/1.wav"}, []string{}, nil)
	if len(result.Sets) != 0 {
		t.Fatalf("expected no sets, got %+v", result.Sets)
	}
}

func TestMatchEmptyAudio(t *testing.T) {
	result := Match(nil, []string{"1.json"}, []string{"1.png"})
	if len(result.Sets) != 0 || len(result.Warnings) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestMatchCollisionKeepsSmallestBaseName(t *testing.T) {
	result := Match([]string{"a/001_b.wav", "a/1_a.wav", "a/intro.wav"}, nil, nil)
	if len(result.Sets) != 1 || result.Sets[0].AudioPath != "a/001_b.wav" {
		t.Fatalf("unexpected sets %+v", result.Sets)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected collision and no-ordinal warnings, got %+v", result.Warnings)
	}
	var sawCollision bool
	for _, w := range result.Warnings {
		if w.Subject == "a/1_a.wav" && strings.Contains(w.Message, "already taken") {
			sawCollision = true
		}
	}
	if !sawCollision {
		t.Fatalf("missing collision warning in %+v", result.Warnings)
	}
}

func TestMatchIsIndependentOfInputOrder(t *testing.T) {
	audio := []string{"a/3.wav", "a/1.wav", "a/01_dup.wav", "a/2.wav", "a/x.wav"}
	timestamps := []string{"t/1.json", "t/2.json", "t/3.json", "t/002.json"}
	visuals := []string{"v/1.png", "v/3.mp4", "v/1.jpg"}

	baseline := Match(audio, timestamps, visuals)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 25; i++ {
		a := shuffled(rng, audio)
		ts := shuffled(rng, timestamps)
		v := shuffled(rng, visuals)
		got := Match(a, ts, v)
		if !reflect.DeepEqual(got, baseline) {
			t.Fatalf("iteration %d: result %+v differs from %+v", i, got, baseline)
		}
	}
}

func shuffled(rng *rand.Rand, in []string) []string {
	out := append([]string(nil), in...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func TestListDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2.wav", "1.WAV", "notes.txt", ".hidden.wav"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "3.wav"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := ListDir(dir, AudioExtensions)
	if err != nil {
		t.Fatalf("ListDir: %v", err)
	}
	want := []string{filepath.Join(dir, "1.WAV"), filepath.Join(dir, "2.wav")}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("files = %v, want %v", files, want)
	}

	missing, err := ListDir(filepath.Join(dir, "absent"), AudioExtensions)
	if err != nil || missing != nil {
		t.Fatalf("missing folder should be empty without error, got %v, %v", missing, err)
	}
}

func TestMatchDirs(t *testing.T) {
	root := t.TempDir()
	audioDir := filepath.Join(root, "audio")
	visualDir := filepath.Join(root, "visuals")
	for _, dir := range []string{audioDir, visualDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, path := range []string{
		filepath.Join(audioDir, "01.mp3"),
		filepath.Join(audioDir, "02.mp3"),
		filepath.Join(visualDir, "2.png"),
	} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	result, err := MatchDirs(audioDir, filepath.Join(root, "timestamps"), visualDir)
	if err != nil {
		t.Fatalf("MatchDirs: %v", err)
	}
	if len(result.Sets) != 2 {
		t.Fatalf("expected 2 sets, got %+v", result.Sets)
	}
	if result.Sets[1].VisualPath != filepath.Join(visualDir, "2.png") {
		t.Fatalf("visual not attached: %+v", result.Sets[1])
	}
}

func TestKindForPath(t *testing.T) {
	cases := map[string]Kind{
		"a.MP4":  KindVideo,
		"b.png":  KindImage,
		"c.wav":  KindAudio,
		"d.txt":  KindUnknown,
		"noext":  KindUnknown,
		"e.jpeg": KindImage,
	}
	for path, want := range cases {
		if got := KindForPath(path); got != want {
			t.Errorf("KindForPath(%q) = %q, want %q", path, got, want)
		}
	}
	if Extension("X/Y.PNG") != "png" {
		t.Fatalf("Extension should lower-case and drop the dot")
	}
}
