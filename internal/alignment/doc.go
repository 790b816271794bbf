// Package alignment maps narration script paragraphs onto contiguous runs of
// ASR word timestamps.
//
// The script is authoritative for text and for scene boundaries: every
// blank-line separated paragraph becomes at least one Scene, never merged or
// reordered. The transcript is authoritative for timing only. Each paragraph
// is matched against a bounded lookahead window of upcoming timestamps with a
// longest-common-subsequence pass over folded tokens; when nothing matches the
// engine falls back to allocating timestamps in proportion to paragraph
// length. The last paragraph always absorbs whatever remains, so every input
// timestamp lands in exactly one Scene.
//
// Paragraphs longer than the configured character budget are further split on
// word boundaries and the paragraph's timestamps are partitioned across the
// pieces with the same matcher.
package alignment
