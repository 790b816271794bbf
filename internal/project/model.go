package project

import (
	"encoding/json"
	"time"
)

// FileKind distinguishes playable media from still images.
type FileKind string

const (
	FileKindAudioVideo FileKind = "audio_video"
	FileKindImage      FileKind = "image"
)

// Storage reports where a file's bytes live.
type Storage string

const (
	StorageEmbedded Storage = "embedded"
	StorageExternal Storage = "external"
)

// WordKind tags the role of a word in a clip.
type WordKind string

const (
	WordContent  WordKind = "content"
	WordSilence  WordKind = "silence"
	WordSceneEnd WordKind = "scene_end"
)

// AssetKind selects how an asset is rendered.
type AssetKind string

const (
	AssetVideo AssetKind = "video"
	AssetImage AssetKind = "image"
)

// Canvas is the output frame size in pixels.
type Canvas struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	Extras map[string]json.RawMessage `json:"-"`
}

// Project is the root of the document.
type Project struct {
	Version     string           `json:"version"`
	Canvas      Canvas           `json:"canvas"`
	Files       []FileEntry      `json:"files"`
	Scenes      []Scene          `json:"scenes"`
	Assets      map[string]Asset `json:"assets"`
	Style       Style            `json:"style,omitzero"`
	Bookkeeping Bookkeeping      `json:"bookkeeping,omitzero"`

	// Extras holds top-level keys this package does not model.
	Extras map[string]json.RawMessage `json:"-"`
}

// FileEntry describes one media file known to the project.
type FileEntry struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Kind    FileKind `json:"kind"`
	Storage Storage  `json:"storage"`
	// Path is the archive entry name for embedded files and a filesystem
	// path for external ones.
	Path     string         `json:"path,omitempty"`
	Size     int64          `json:"size"`
	Metadata *MediaMetadata `json:"metadata,omitempty"`

	Extras map[string]json.RawMessage `json:"-"`
}

// MediaMetadata carries probed properties. Video fields are zero for audio.
type MediaMetadata struct {
	DurationMS int64   `json:"duration_ms,omitempty"`
	SampleRate int     `json:"sample_rate,omitempty"`
	Channels   int     `json:"channels,omitempty"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	FrameRate  float64 `json:"frame_rate,omitempty"`

	Extras map[string]json.RawMessage `json:"-"`
}

// Scene groups clips on the timeline.
type Scene struct {
	ID    string `json:"id"`
	Clips []Clip `json:"clips"`

	Extras map[string]json.RawMessage `json:"-"`
}

// Clip is one captioned span of narration.
type Clip struct {
	ID       string      `json:"id"`
	Words    []Word      `json:"words"`
	Caption  string      `json:"caption"`
	AssetIDs []string    `json:"asset_ids"`
	Audio    *AudioRange `json:"audio,omitempty"`

	Extras map[string]json.RawMessage `json:"-"`
}

// AudioRange points a clip at a span of an audio file.
type AudioRange struct {
	MediaID string `json:"media_id"`
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`

	Extras map[string]json.RawMessage `json:"-"`
}

// Word is a timed token inside a clip. StartMS is relative to the clip's
// audio source.
type Word struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	StartMS    int64    `json:"start_ms"`
	DurationMS int64    `json:"duration_ms"`
	Kind       WordKind `json:"kind"`

	Extras map[string]json.RawMessage `json:"-"`
}

// EndMS returns the word's end offset.
func (w Word) EndMS() int64 { return w.StartMS + w.DurationMS }

// Point is a normalized canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`

	Extras map[string]json.RawMessage `json:"-"`
}

// Size is a normalized extent relative to the canvas.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Extras map[string]json.RawMessage `json:"-"`
}

// Asset places a media file on the canvas.
type Asset struct {
	ID       string    `json:"id"`
	MediaID  string    `json:"media_id"`
	Position Point     `json:"position"`
	Size     Size      `json:"size"`
	Rotation float64   `json:"rotation"`
	ZIndex   int       `json:"z_index"`
	Kind     AssetKind `json:"kind"`

	Extras map[string]json.RawMessage `json:"-"`
}

// Style holds caption presentation defaults. Fields are pointers so keys a
// document never had stay absent on re-save.
type Style struct {
	CaptionFont     *string `json:"caption_font,omitempty"`
	CaptionSize     *int    `json:"caption_size,omitempty"`
	CaptionColor    *string `json:"caption_color,omitempty"`
	CaptionsEnabled *bool   `json:"captions_enabled,omitempty"`

	Extras map[string]json.RawMessage `json:"-"`
}

// Bookkeeping records provenance.
type Bookkeeping struct {
	Generator string    `json:"generator,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`

	Extras map[string]json.RawMessage `json:"-"`
}

// Generator names this tool in Bookkeeping.
const Generator = "scenecraft"

// DefaultStyle is applied to new projects.
func DefaultStyle() Style {
	return Style{
		CaptionFont:     ptr("Inter"),
		CaptionSize:     ptr(48),
		CaptionColor:    ptr("#FFFFFF"),
		CaptionsEnabled: ptr(true),
	}
}

func ptr[T any](v T) *T { return &v }

// New returns an empty project at the current schema version.
func New(canvas Canvas, now time.Time) *Project {
	return &Project{
		Version: SchemaVersion,
		Canvas:  canvas,
		Files:   []FileEntry{},
		Scenes:  []Scene{},
		Assets:  map[string]Asset{},
		Style:   DefaultStyle(),
		Bookkeeping: Bookkeeping{
			Generator: Generator,
			CreatedAt: now.UTC(),
			UpdatedAt: now.UTC(),
		},
	}
}

// File returns the file entry with id.
func (p *Project) File(id string) (*FileEntry, bool) {
	for i := range p.Files {
		if p.Files[i].ID == id {
			return &p.Files[i], true
		}
	}
	return nil, false
}

// Clips returns pointers to every clip in scene order.
func (p *Project) Clips() []*Clip {
	var clips []*Clip
	for i := range p.Scenes {
		for j := range p.Scenes[i].Clips {
			clips = append(clips, &p.Scenes[i].Clips[j])
		}
	}
	return clips
}

// AddFile appends entry.
func (p *Project) AddFile(entry FileEntry) {
	p.Files = append(p.Files, entry)
}

// AddAsset registers asset under its id.
func (p *Project) AddAsset(asset Asset) {
	if p.Assets == nil {
		p.Assets = map[string]Asset{}
	}
	p.Assets[asset.ID] = asset
}

// EmbeddedFiles returns the files stored inside the archive.
func (p *Project) EmbeddedFiles() []FileEntry {
	var out []FileEntry
	for _, f := range p.Files {
		if f.Storage == StorageEmbedded {
			out = append(out, f)
		}
	}
	return out
}
