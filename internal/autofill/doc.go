// Package autofill injects numbered media into an existing project archive.
//
// A file whose name carries ordinal N is attached to the Nth clip in scene
// order. Each file is handled in isolation: a file that cannot be used
// produces a warning and the remaining files are still injected. Only a
// missing or corrupt archive document aborts the run. Every existing archive
// member is carried over byte for byte.
package autofill
