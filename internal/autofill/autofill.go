package autofill

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"scenecraft/internal/fileutil"
	"scenecraft/internal/ids"
	"scenecraft/internal/logging"
	"scenecraft/internal/media/ffprobe"
	"scenecraft/internal/mediaset"
	"scenecraft/internal/project"
	"scenecraft/internal/services"
	"scenecraft/internal/textutil"
)

// Engine performs autofill runs. The zero value works with a temp-dir work
// root, random ids, default metadata and the default image inset.
type Engine struct {
	// WorkRoot holds per-run working directories.
	WorkRoot       string
	IDs            ids.Generator
	Prober         ffprobe.Prober
	Logger         *slog.Logger
	VideoDefaults  ffprobe.VideoInfo
	ImagePlacement project.Placement
	Now            func() time.Time
}

// Result summarizes an autofill run.
type Result struct {
	Path     string
	Project  *project.Project
	Injected int
	Warnings []services.Warning
}

// Autofill reads archivePath, attaches every usable file in mediaPaths to
// its clip and publishes the result to dst. dst may equal archivePath.
func (e *Engine) Autofill(ctx context.Context, archivePath string, mediaPaths []string, dst string) (Result, error) {
	e.applyDefaults()
	logger := e.Logger.With(logging.String(logging.FieldComponent, "autofill"))

	if err := os.MkdirAll(e.WorkRoot, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrResource, "autofill", "prepare", "create work root", err)
	}
	workDir := filepath.Join(e.WorkRoot, "autofill-"+uuid.NewString())
	if err := os.Mkdir(workDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrResource, "autofill", "prepare", "create working directory", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("working directory cleanup failed", logging.String("path", workDir), logging.Error(err))
		}
	}()

	doc, members, err := project.Extract(archivePath, workDir)
	if err != nil {
		return Result{}, err
	}
	clips := doc.Clips()

	run := &run{engine: e, logger: logger, doc: doc, clips: clips, workDir: workDir, members: make(map[string]struct{}, len(members))}
	for _, name := range members {
		run.members[name] = struct{}{}
	}
	for _, path := range sortedPaths(mediaPaths) {
		if err := ctx.Err(); err != nil {
			return Result{}, services.Wrap(services.ErrResource, "autofill", "inject", "cancelled", err)
		}
		run.inject(ctx, path)
	}

	entries := make([]project.Entry, 0, len(members)+len(run.added))
	for _, name := range members {
		entries = append(entries, project.Entry{Name: name, SourcePath: filepath.Join(workDir, filepath.FromSlash(name))})
	}
	entries = append(entries, run.added...)

	doc.Bookkeeping.UpdatedAt = e.Now().UTC()
	if err := project.PackArchive(dst, doc, entries); err != nil {
		return Result{}, err
	}
	logger.Info("autofill complete",
		logging.String(logging.FieldEventType, "autofill_complete"),
		logging.String("path", dst),
		logging.Int("injected", run.injected),
		logging.Int("warnings", len(run.warnings)),
		logging.Int("clips", len(clips)),
	)
	return Result{Path: dst, Project: doc, Injected: run.injected, Warnings: run.warnings}, nil
}

func (e *Engine) applyDefaults() {
	if e.WorkRoot == "" {
		e.WorkRoot = os.TempDir()
	}
	if e.IDs == nil {
		e.IDs = ids.UUID()
	}
	if e.Logger == nil {
		e.Logger = logging.NewNop()
	}
	if e.VideoDefaults == (ffprobe.VideoInfo{}) {
		e.VideoDefaults = ffprobe.DefaultVideo
	}
	if e.ImagePlacement.IsZero() {
		e.ImagePlacement = project.DefaultImageInset
	}
	if e.Now == nil {
		e.Now = time.Now
	}
}

type run struct {
	engine   *Engine
	logger   *slog.Logger
	doc      *project.Project
	clips    []*project.Clip
	workDir  string
	members  map[string]struct{}
	added    []project.Entry
	injected int
	warnings []services.Warning
}

func (r *run) warn(path, format string, args ...any) {
	w := services.Warnf(path, format, args...)
	r.warnings = append(r.warnings, w)
	logging.WarnWithContext(r.logger, "media file skipped", "autofill_skip",
		logging.String(logging.FieldSubject, path),
		logging.String("reason", w.Message),
	)
}

func (r *run) inject(ctx context.Context, path string) {
	kind := mediaset.KindForPath(path)
	if kind != mediaset.KindVideo && kind != mediaset.KindImage {
		r.warn(path, "unsupported media type %q", filepath.Ext(path))
		return
	}
	ordinal, ok := mediaset.Ordinal(path)
	if !ok {
		r.warn(path, "file name has no ordinal")
		return
	}
	if ordinal < 1 || ordinal > len(r.clips) {
		r.warn(path, "ordinal %d has no matching clip (archive has %d)", ordinal, len(r.clips))
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		r.warn(path, "unreadable: %v", err)
		return
	}
	if info.IsDir() {
		r.warn(path, "is a directory")
		return
	}

	ext := mediaset.Extension(path)
	mediaID := r.freshID("media", func(id string) bool {
		if _, taken := r.doc.File(id); taken {
			return true
		}
		_, taken := r.members[project.MediaEntryName(id, ext)]
		return taken
	})
	entryName := project.MediaEntryName(mediaID, ext)
	target := filepath.Join(r.workDir, filepath.FromSlash(entryName))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		r.warn(path, "prepare copy: %v", err)
		return
	}
	size, err := fileutil.CopyFileVerified(path, target)
	if err != nil {
		r.warn(path, "copy failed: %v", err)
		return
	}

	entry := project.FileEntry{
		ID:      mediaID,
		Name:    textutil.SanitizeFileName(filepath.Base(path)),
		Kind:    project.FileKindAudioVideo,
		Storage: project.StorageEmbedded,
		Path:    entryName,
		Size:    size,
	}
	assetKind, placement := project.AssetVideo, project.FullCanvas
	if kind == mediaset.KindImage {
		entry.Kind = project.FileKindImage
		assetKind, placement = project.AssetImage, r.engine.ImagePlacement
	} else {
		video, probed := ffprobe.VideoOrDefault(ctx, r.engine.Prober, path, r.engine.VideoDefaults)
		if !probed {
			r.logger.Debug("video probe failed; using defaults", logging.String(logging.FieldSubject, path))
		}
		entry.Metadata = &project.MediaMetadata{
			DurationMS: int64(math.Round(video.Duration * 1000)),
			Width:      video.Width,
			Height:     video.Height,
			FrameRate:  video.FrameRate,
		}
	}

	assetID := r.freshID("asset", func(id string) bool { _, taken := r.doc.Assets[id]; return taken })
	asset := project.NewAsset(assetID, mediaID, assetKind, placement)
	r.doc.AddFile(entry)
	r.doc.AddAsset(asset)
	clip := r.clips[ordinal-1]
	clip.AssetIDs = append(clip.AssetIDs, asset.ID)
	r.added = append(r.added, project.Entry{Name: entryName, SourcePath: target})
	r.injected++

	r.logger.Debug("media injected",
		logging.String(logging.FieldSubject, path),
		logging.Int("clip", ordinal),
		logging.String("media_id", mediaID),
	)
}

// freshID draws ids until one is not already used by the loaded archive.
func (r *run) freshID(prefix string, taken func(string) bool) string {
	for {
		if id := r.engine.IDs.NewID(prefix); !taken(id) {
			return id
		}
	}
}

func sortedPaths(paths []string) []string {
	out := append([]string(nil), paths...)
	sort.Strings(out)
	return out
}
