package mediaset

import (
	"path/filepath"
	"strings"
)

// Kind classifies a media file by extension.
type Kind string

const (
	KindUnknown Kind = ""
	KindAudio   Kind = "audio"
	KindVideo   Kind = "video"
	KindImage   Kind = "image"
)

var (
	AudioExtensions     = []string{".wav", ".mp3", ".m4a", ".aac", ".flac", ".ogg", ".opus"}
	VideoExtensions     = []string{".mp4", ".mov", ".m4v", ".mkv", ".webm"}
	ImageExtensions     = []string{".png", ".jpg", ".jpeg", ".webp", ".gif"}
	TimestampExtensions = []string{".json", ".yaml", ".yml"}
)

// VisualExtensions lists every extension accepted for a visual file.
func VisualExtensions() []string {
	return append(append([]string(nil), VideoExtensions...), ImageExtensions...)
}

// KindForPath reports the media kind of path based on its extension.
func KindForPath(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case hasExtension(AudioExtensions, ext):
		return KindAudio
	case hasExtension(VideoExtensions, ext):
		return KindVideo
	case hasExtension(ImageExtensions, ext):
		return KindImage
	default:
		return KindUnknown
	}
}

// Extension returns the lower-cased extension of path without the dot.
func Extension(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func hasExtension(list []string, ext string) bool {
	for _, candidate := range list {
		if candidate == ext {
			return true
		}
	}
	return false
}
