package ids

import (
	"testing"

	"github.com/google/uuid"
)

func TestSequenceCountsPerPrefix(t *testing.T) {
	seq := NewSequence()
	got := []string{seq.NewID("media"), seq.NewID("asset"), seq.NewID("media"), seq.NewID("")}
	want := []string{"media-1", "asset-1", "media-2", "id-1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("id %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUUIDGeneratorProducesDistinctValidIDs(t *testing.T) {
	gen := UUID()
	a, b := gen.NewID("media"), gen.NewID("media")
	if a == b {
		t.Fatalf("expected distinct ids, got %q twice", a)
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("expected uuid, got %q: %v", a, err)
	}
}
