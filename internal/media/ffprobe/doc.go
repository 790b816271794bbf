// Package ffprobe provides a typed wrapper around ffprobe JSON output and the
// metadata probe used when media is packed into a project archive.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Prober: the probe collaborator consumed by the builder and autofill
//   - VideoInfo / AudioInfo: the normalized metadata those components store
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - CommandProber: Prober backed by the ffprobe binary
//   - VideoOrDefault: probes a video and substitutes fixed defaults on failure
package ffprobe
