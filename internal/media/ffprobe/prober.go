package ffprobe

import (
	"context"
	"fmt"
)

// VideoInfo is the metadata stored for video files.
type VideoInfo struct {
	Width     int
	Height    int
	FrameRate float64
	Duration  float64
}

// AudioInfo is the metadata stored for audio files.
type AudioInfo struct {
	Duration   float64
	SampleRate int
	Channels   int
}

// Prober inspects local media files.
type Prober interface {
	ProbeVideo(ctx context.Context, path string) (VideoInfo, error)
	ProbeAudio(ctx context.Context, path string) (AudioInfo, error)
}

// CommandProber implements Prober with the ffprobe executable.
type CommandProber struct {
	Binary string
}

// ProbeVideo decodes the header of the first video stream.
func (p CommandProber) ProbeVideo(ctx context.Context, path string) (VideoInfo, error) {
	result, err := Inspect(ctx, p.Binary, path)
	if err != nil {
		return VideoInfo{}, err
	}
	stream, ok := result.FirstStream("video")
	if !ok {
		return VideoInfo{}, fmt.Errorf("ffprobe %s: no video stream", path)
	}
	return VideoInfo{
		Width:     stream.Width,
		Height:    stream.Height,
		FrameRate: stream.FrameRate(),
		Duration:  result.DurationSeconds(),
	}, nil
}

// ProbeAudio reads sample rate, channel count, and duration of the first audio stream.
func (p CommandProber) ProbeAudio(ctx context.Context, path string) (AudioInfo, error) {
	result, err := Inspect(ctx, p.Binary, path)
	if err != nil {
		return AudioInfo{}, err
	}
	stream, ok := result.FirstStream("audio")
	if !ok {
		return AudioInfo{}, fmt.Errorf("ffprobe %s: no audio stream", path)
	}
	return AudioInfo{
		Duration:   result.DurationSeconds(),
		SampleRate: stream.SampleRateHz(),
		Channels:   stream.Channels,
	}, nil
}

// DefaultVideo is substituted when a video cannot be probed.
var DefaultVideo = VideoInfo{Width: 1920, Height: 1080, FrameRate: 30, Duration: 10}

// DefaultAudio fills audio fields a probe could not provide.
var DefaultAudio = AudioInfo{SampleRate: 48000, Channels: 1}

// VideoOrDefault probes path and fills any missing field from defaults. The
// boolean reports whether the probe itself succeeded.
func VideoOrDefault(ctx context.Context, p Prober, path string, defaults VideoInfo) (VideoInfo, bool) {
	if p == nil {
		return defaults, false
	}
	info, err := p.ProbeVideo(ctx, path)
	if err != nil {
		return defaults, false
	}
	if info.Width <= 0 || info.Height <= 0 {
		info.Width, info.Height = defaults.Width, defaults.Height
	}
	if info.FrameRate <= 0 {
		info.FrameRate = defaults.FrameRate
	}
	if info.Duration <= 0 {
		info.Duration = defaults.Duration
	}
	return info, true
}

// AudioOrDefault probes path and fills missing sample rate and channel count
// from defaults.
func AudioOrDefault(ctx context.Context, p Prober, path string, defaults AudioInfo) (AudioInfo, bool) {
	if p == nil {
		return defaults, false
	}
	info, err := p.ProbeAudio(ctx, path)
	if err != nil {
		return defaults, false
	}
	if info.SampleRate <= 0 {
		info.SampleRate = defaults.SampleRate
	}
	if info.Channels <= 0 {
		info.Channels = defaults.Channels
	}
	if info.Duration <= 0 {
		info.Duration = defaults.Duration
	}
	return info, true
}
