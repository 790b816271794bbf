package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"scenecraft/internal/alignment"
	"scenecraft/internal/ids"
	"scenecraft/internal/logging"
	"scenecraft/internal/media/ffprobe"
	"scenecraft/internal/mediaset"
	"scenecraft/internal/project"
	"scenecraft/internal/services"
	"scenecraft/internal/textutil"
)

// DefaultSilenceGapMS is the shortest gap that receives a silence word.
const DefaultSilenceGapMS = 300

// SceneMedia pairs an aligned scene with the files it plays.
type SceneMedia struct {
	Scene     alignment.Scene
	AudioPath string
	// VisualPath is optional; a video or image shown during the clip.
	VisualPath string
}

// Builder assembles archives. IDs and Prober are request scoped; a nil
// Prober records default metadata for every file.
type Builder struct {
	IDs              ids.Generator
	Prober           ffprobe.Prober
	Logger           *slog.Logger
	SilenceGapMS     int64
	ProbeConcurrency int
	VideoDefaults    ffprobe.VideoInfo
	AudioDefaults    ffprobe.AudioInfo
	ImagePlacement   project.Placement
	Now              func() time.Time
}

// Result summarizes a written archive.
type Result struct {
	Path    string
	Project *project.Project
	Files   int
	Clips   int
}

type source struct {
	path string
	kind mediaset.Kind
	// durationMS is the furthest scene end that plays this file.
	durationMS int64
	size       int64
	fileID     string
	video      ffprobe.VideoInfo
	audio      ffprobe.AudioInfo
}

// Build writes one clip per scene into a new archive at dst.
func (b *Builder) Build(ctx context.Context, scenes []SceneMedia, canvas project.Canvas, dst string) (Result, error) {
	if len(scenes) == 0 {
		return Result{}, services.Wrap(services.ErrInput, "builder", "build", "no scenes to build", nil)
	}
	b.applyDefaults()
	logger := b.Logger.With(logging.String(logging.FieldComponent, "builder"))

	sources, order, err := collectSources(scenes)
	if err != nil {
		return Result{}, err
	}
	if err := b.probe(ctx, sources, order); err != nil {
		return Result{}, err
	}

	p := project.New(canvas, b.Now())
	if requestID, ok := services.RequestIDFromContext(ctx); ok {
		p.Bookkeeping.RequestID = requestID
	}
	media := make(map[string]string, len(order))
	for _, path := range order {
		src := sources[path]
		src.fileID = b.IDs.NewID("media")
		p.AddFile(fileEntry(src))
		media[src.fileID] = src.path
	}

	for _, sm := range scenes {
		audio := sources[sm.AudioPath]
		clip := project.Clip{
			ID:       b.IDs.NewID("clip"),
			Caption:  sm.Scene.Text,
			Words:    ClipWords(b.IDs, sm.Scene.Timestamps, sm.Scene.StartMS, b.SilenceGapMS),
			AssetIDs: []string{},
			Audio: &project.AudioRange{
				MediaID: audio.fileID,
				StartMS: sm.Scene.StartMS,
				EndMS:   sm.Scene.EndMS,
			},
		}
		if sm.VisualPath != "" {
			visual := sources[sm.VisualPath]
			asset := b.visualAsset(visual)
			p.AddAsset(asset)
			clip.AssetIDs = append(clip.AssetIDs, asset.ID)
		}
		p.Scenes = append(p.Scenes, project.Scene{ID: b.IDs.NewID("scene"), Clips: []project.Clip{clip}})
	}

	if err := project.WriteArchive(dst, p, media); err != nil {
		return Result{}, err
	}
	logger.Info("archive built",
		logging.String(logging.FieldEventType, "archive_built"),
		logging.String("path", dst),
		logging.Int("files", len(p.Files)),
		logging.Int("clips", len(scenes)),
	)
	return Result{Path: dst, Project: p, Files: len(p.Files), Clips: len(scenes)}, nil
}

func (b *Builder) applyDefaults() {
	if b.IDs == nil {
		b.IDs = ids.UUID()
	}
	if b.Logger == nil {
		b.Logger = logging.NewNop()
	}
	if b.SilenceGapMS <= 0 {
		b.SilenceGapMS = DefaultSilenceGapMS
	}
	if b.ProbeConcurrency <= 0 {
		b.ProbeConcurrency = 4
	}
	if b.VideoDefaults == (ffprobe.VideoInfo{}) {
		b.VideoDefaults = ffprobe.DefaultVideo
	}
	if b.AudioDefaults == (ffprobe.AudioInfo{}) {
		b.AudioDefaults = ffprobe.DefaultAudio
	}
	if b.ImagePlacement.IsZero() {
		b.ImagePlacement = project.DefaultImageInset
	}
	if b.Now == nil {
		b.Now = time.Now
	}
}

// collectSources checks every referenced file before anything is written and
// returns them deduplicated by path in first-use order.
func collectSources(scenes []SceneMedia) (map[string]*source, []string, error) {
	sources := make(map[string]*source)
	var order []string
	add := func(path string, audio bool, endMS int64) error {
		if existing, ok := sources[path]; ok {
			existing.durationMS = max(existing.durationMS, endMS)
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return services.Wrap(services.ErrInput, "builder", "build", fmt.Sprintf("source media missing: %s", path), err)
			}
			return services.Wrap(services.ErrResource, "builder", "build", fmt.Sprintf("stat %s", path), err)
		}
		if info.IsDir() {
			return services.Wrap(services.ErrInput, "builder", "build", fmt.Sprintf("source media is a directory: %s", path), nil)
		}
		kind := mediaset.KindForPath(path)
		if audio {
			if kind == mediaset.KindImage {
				return services.Wrap(services.ErrInput, "builder", "build", fmt.Sprintf("audio source is an image: %s", path), nil)
			}
			kind = mediaset.KindAudio
		} else if kind != mediaset.KindVideo && kind != mediaset.KindImage {
			return services.Wrap(services.ErrInput, "builder", "build", fmt.Sprintf("unsupported visual type: %s", path), nil)
		}
		sources[path] = &source{path: path, kind: kind, durationMS: endMS, size: info.Size()}
		order = append(order, path)
		return nil
	}

	for i, sm := range scenes {
		if sm.AudioPath == "" {
			return nil, nil, services.Wrap(services.ErrInput, "builder", "build", fmt.Sprintf("scene %d has no audio", i), nil)
		}
		if err := add(sm.AudioPath, true, sm.Scene.EndMS); err != nil {
			return nil, nil, err
		}
		if sm.VisualPath != "" {
			if err := add(sm.VisualPath, false, 0); err != nil {
				return nil, nil, err
			}
		}
	}
	return sources, order, nil
}

// probe fills metadata concurrently. Results land in the source records, so
// output order follows order regardless of completion order.
func (b *Builder) probe(ctx context.Context, sources map[string]*source, order []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.ProbeConcurrency)
	for _, path := range order {
		src := sources[path]
		g.Go(func() error {
			switch src.kind {
			case mediaset.KindAudio:
				info, ok := ffprobe.AudioOrDefault(gctx, b.Prober, src.path, b.AudioDefaults)
				if !ok {
					b.Logger.Debug("audio probe failed; using defaults", logging.String("path", src.path))
				}
				src.audio = info
			case mediaset.KindVideo:
				info, ok := ffprobe.VideoOrDefault(gctx, b.Prober, src.path, b.VideoDefaults)
				if !ok {
					b.Logger.Debug("video probe failed; using defaults", logging.String("path", src.path))
				}
				src.video = info
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return services.Wrap(services.ErrResource, "builder", "probe", "cancelled", err)
	}
	return nil
}

func fileEntry(src *source) project.FileEntry {
	entry := project.FileEntry{
		ID:      src.fileID,
		Name:    textutil.SanitizeFileName(filepath.Base(src.path)),
		Kind:    project.FileKindAudioVideo,
		Storage: project.StorageEmbedded,
		Path:    project.MediaEntryName(src.fileID, mediaset.Extension(src.path)),
		Size:    src.size,
	}
	switch src.kind {
	case mediaset.KindAudio:
		entry.Metadata = &project.MediaMetadata{
			DurationMS: src.durationMS,
			SampleRate: src.audio.SampleRate,
			Channels:   src.audio.Channels,
		}
	case mediaset.KindVideo:
		entry.Metadata = &project.MediaMetadata{
			DurationMS: int64(math.Round(src.video.Duration * 1000)),
			Width:      src.video.Width,
			Height:     src.video.Height,
			FrameRate:  src.video.FrameRate,
		}
	case mediaset.KindImage:
		entry.Kind = project.FileKindImage
	}
	return entry
}

func (b *Builder) visualAsset(visual *source) project.Asset {
	if visual.kind == mediaset.KindVideo {
		return project.NewAsset(b.IDs.NewID("asset"), visual.fileID, project.AssetVideo, project.FullCanvas)
	}
	return project.NewAsset(b.IDs.NewID("asset"), visual.fileID, project.AssetImage, b.ImagePlacement)
}
