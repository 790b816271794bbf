// Package mediaset groups independently numbered media files into per-scene
// sets keyed by the ordinal embedded in each file name.
//
// "001_intro.wav", "1.json" and "scene-01.png" all carry ordinal 1 and land in
// the same MediaSet. Matching is a pure function of the supplied paths, so the
// result does not depend on directory enumeration order.
package mediaset
