// Package services defines shared utilities consumed by the alignment,
// builder, and autofill components and by the CLI that wires them.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs and operation names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the fatal categories callers act on (input, corruption, resource).
//   - The Warning type used to report per-item failures that never abort a
//     batch.
//
// Use these helpers when wiring new component logic so error handling and
// observability stay uniform across the pipeline.
package services
