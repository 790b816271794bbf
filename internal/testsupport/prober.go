package testsupport

import (
	"context"
	"fmt"
	"sync"

	"scenecraft/internal/media/ffprobe"
)

// FakeProber returns canned metadata keyed by path. Paths without an entry
// fail to probe.
type FakeProber struct {
	Video map[string]ffprobe.VideoInfo
	Audio map[string]ffprobe.AudioInfo

	mu    sync.Mutex
	calls []string
}

// ProbeVideo implements ffprobe.Prober.
func (f *FakeProber) ProbeVideo(_ context.Context, path string) (ffprobe.VideoInfo, error) {
	f.record(path)
	if info, ok := f.Video[path]; ok {
		return info, nil
	}
	return ffprobe.VideoInfo{}, fmt.Errorf("fake probe: no video for %s", path)
}

// ProbeAudio implements ffprobe.Prober.
func (f *FakeProber) ProbeAudio(_ context.Context, path string) (ffprobe.AudioInfo, error) {
	f.record(path)
	if info, ok := f.Audio[path]; ok {
		return info, nil
	}
	return ffprobe.AudioInfo{}, fmt.Errorf("fake probe: no audio for %s", path)
}

// Calls returns every probed path in call order.
func (f *FakeProber) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeProber) record(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
}
