// Package builder turns aligned scenes and their media into a project
// archive.
//
// Each scene becomes one clip whose words are the scene's timestamps with
// silence markers filling long gaps and a zero-duration scene_end closing the
// list. Audio files are embedded once per source path; an attached visual
// becomes an asset on its clip. Nothing is written unless every source file
// exists, and the archive is published atomically.
package builder
