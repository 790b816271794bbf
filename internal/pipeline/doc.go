// Package pipeline wires the alignment, matching, building and autofill
// packages into the three end-to-end flows the CLI exposes:
//
//   - Script: a narration script plus one timestamp file and one audio file
//     become an archive.
//   - Batch: numbered audio, timestamp and visual folders become an archive
//     with one scene per media set.
//   - Autofill: numbered media are injected into an existing archive.
//
// Each flow runs under a request id, logs its start and outcome, and records
// successful archives in the history ledger when one is configured.
package pipeline
