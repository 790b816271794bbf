package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"scenecraft/internal/transcript"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = byte('A' + i%26)
	}
	WriteBytes(t, path, data)
}

// WriteBytes writes data to path, creating parent directories.
func WriteBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Timestamps builds evenly spaced word timestamps: each word lasts 400ms and
// words start every 500ms from startMS.
func Timestamps(startMS int64, words ...string) []transcript.WordTimestamp {
	out := make([]transcript.WordTimestamp, len(words))
	for i, w := range words {
		start := startMS + int64(i)*500
		out[i] = transcript.WordTimestamp{Text: w, StartMS: start, EndMS: start + 400}
	}
	return out
}
