package project

import (
	"strings"

	"golang.org/x/mod/semver"
)

// SchemaVersion is the document version this package writes.
const SchemaVersion = "1.4.0"

// EffectiveVersion returns the marker to write for a document loaded with
// loaded: the newer of loaded and SchemaVersion. A missing marker becomes
// SchemaVersion; a marker that is not semver cannot be ordered and is kept
// verbatim.
func EffectiveVersion(loaded string) string {
	canonical := semverForm(loaded)
	if canonical == "" {
		return SchemaVersion
	}
	if !semver.IsValid(canonical) {
		return loaded
	}
	if semver.Compare(canonical, semverForm(SchemaVersion)) > 0 {
		return loaded
	}
	return SchemaVersion
}

func semverForm(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
