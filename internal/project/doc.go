// Package project models the editor's project container and reads and writes
// it.
//
// An archive is a zip file holding a structured document at document.json and
// every embedded media file under media/{media_id}.{ext}. The in-memory model
// covers the fields this system reads or writes; anything else found in the
// document (top-level keys and unknown keys on files, scenes and clips) is
// kept as raw JSON and written back unchanged, since the consumer is an
// external editor whose format evolves independently.
package project
