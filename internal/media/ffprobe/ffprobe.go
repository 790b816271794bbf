package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Duration     string `json:"duration"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	SampleRate   string `json:"sample_rate"`
	Channels     int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return Parse(output)
}

// Parse decodes raw ffprobe JSON output.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// FirstStream returns the first stream of the given codec type.
func (r Result) FirstStream(codecType string) (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, codecType) {
			return stream, true
		}
	}
	return Stream{}, false
}

// DurationSeconds returns the container duration in seconds, falling back to
// the longest stream duration. Returns 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	if d := parseFloat(r.Format.Duration); d > 0 {
		return d
	}
	var longest float64
	for _, stream := range r.Streams {
		if d := parseFloat(stream.Duration); d > longest {
			longest = d
		}
	}
	return longest
}

// FrameRate returns the stream frame rate, preferring the real base rate.
func (s Stream) FrameRate() float64 {
	if fps := parseRational(s.RFrameRate); fps > 0 {
		return fps
	}
	return parseRational(s.AvgFrameRate)
}

// SampleRateHz returns the audio sample rate or 0 when unavailable.
func (s Stream) SampleRateHz() int {
	rate, err := strconv.Atoi(strings.TrimSpace(s.SampleRate))
	if err != nil || rate < 0 {
		return 0
	}
	return rate
}

// parseFloat returns 0 for empty or malformed values.
func parseFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}

// parseRational decodes ffprobe rates such as "30000/1001" or "25".
func parseRational(value string) float64 {
	value = strings.TrimSpace(value)
	num, den, found := strings.Cut(value, "/")
	if !found {
		return parseFloat(value)
	}
	n, d := parseFloat(num), parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}
