// Package textutil provides text processing utilities for script
// normalization, tokenization, similarity scoring, and filename sanitization.
//
// The primary use cases are:
//   - Normalizing narration scripts (Unicode NFC, line endings) and splitting
//     them into verbatim word spans
//   - Folding words into comparable tokens for transcript alignment
//   - Computing cosine similarity between token fingerprints
//   - Sanitizing filenames and path segments for safe filesystem use
//
// Tokens are Unicode case-folded and stripped of everything except letters and
// digits, so "There." and "there" compare equal.
package textutil
