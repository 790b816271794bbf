package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"scenecraft/internal/alignment"
	"scenecraft/internal/builder"
	"scenecraft/internal/history"
	"scenecraft/internal/logging"
	"scenecraft/internal/mediaset"
	"scenecraft/internal/services"
	"scenecraft/internal/transcript"
)

// ScriptRequest describes a script-driven build. VisualDir is optional; a
// visual with ordinal N attaches to scene N.
type ScriptRequest struct {
	ScriptPath     string
	TimestampsPath string
	AudioPath      string
	VisualDir      string
	Output         string
}

// BatchRequest describes a folder-driven build. TimestampDir, VisualDir and
// ScriptPath are optional. When ScriptPath is set, paragraph N supplies the
// caption text of media set N in ascending order.
type BatchRequest struct {
	AudioDir     string
	TimestampDir string
	VisualDir    string
	ScriptPath   string
	Output       string
}

// AutofillRequest describes an injection run. Media lists individual files;
// MediaDir adds every supported visual in a folder.
type AutofillRequest struct {
	Archive  string
	Media    []string
	MediaDir string
	Output   string
}

// AlignScript aligns a script file against a timestamp file without
// building anything.
func (r *Runner) AlignScript(ctx context.Context, scriptPath, timestampsPath string) ([]alignment.Scene, error) {
	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, readError("pipeline", scriptPath, err)
	}
	words, err := transcript.ParseFile(timestampsPath)
	if err != nil {
		return nil, err
	}
	return r.Aligner(logging.WithContext(ctx, r.logger())).Align(string(script), words)
}

// BuildFromScript runs the script flow.
func (r *Runner) BuildFromScript(ctx context.Context, req ScriptRequest) (Outcome, error) {
	return r.run(ctx, history.OperationBuild, func(ctx context.Context, logger *slog.Logger) (Outcome, error) {
		scenes, err := r.AlignScript(ctx, req.ScriptPath, req.TimestampsPath)
		if err != nil {
			return Outcome{}, err
		}
		var warnings []services.Warning
		visuals := map[int]string{}
		if req.VisualDir != "" {
			files, err := mediaset.ListDir(req.VisualDir, mediaset.VisualExtensions())
			if err != nil {
				return Outcome{}, err
			}
			byOrdinal, matchWarnings := mediaset.ByOrdinal("visual", files)
			warnings = append(warnings, matchWarnings...)
			for _, ordinal := range slices.Sorted(maps.Keys(byOrdinal)) {
				path := byOrdinal[ordinal]
				if ordinal < 1 || ordinal > len(scenes) {
					warnings = append(warnings, services.Warnf(path, "ordinal %d has no matching scene (script has %d)", ordinal, len(scenes)))
					continue
				}
				visuals[ordinal-1] = path
			}
		}

		input := make([]builder.SceneMedia, len(scenes))
		for i, scene := range scenes {
			input[i] = builder.SceneMedia{Scene: scene, AudioPath: req.AudioPath, VisualPath: visuals[i]}
		}
		result, err := r.builder(logger).Build(ctx, input, r.canvas(), req.Output)
		if err != nil {
			return Outcome{}, err
		}
		warnings = append(warnings, confidenceWarnings(scenes, req.ScriptPath)...)
		return Outcome{Path: result.Path, Scenes: scenes, Clips: result.Clips, Warnings: warnings}, nil
	})
}

// BuildFromSets runs the batch flow.
func (r *Runner) BuildFromSets(ctx context.Context, req BatchRequest) (Outcome, error) {
	return r.run(ctx, history.OperationBatch, func(ctx context.Context, logger *slog.Logger) (Outcome, error) {
		matched, err := mediaset.MatchDirs(req.AudioDir, req.TimestampDir, req.VisualDir)
		if err != nil {
			return Outcome{}, err
		}
		warnings := append([]services.Warning(nil), matched.Warnings...)
		if len(matched.Sets) == 0 {
			return Outcome{}, services.Wrap(services.ErrInput, "pipeline", "batch", "no media sets matched", nil)
		}

		var paragraphs []string
		if req.ScriptPath != "" {
			data, err := os.ReadFile(req.ScriptPath)
			if err != nil {
				return Outcome{}, readError("pipeline", req.ScriptPath, err)
			}
			paragraphs = alignment.SplitParagraphs(string(data))
		}

		aligner := r.Aligner(logger)
		var (
			input  []builder.SceneMedia
			scenes []alignment.Scene
		)
		for i, set := range matched.Sets {
			text := ""
			if i < len(paragraphs) {
				text = paragraphs[i]
			}
			setScenes, warn := r.scenesForSet(ctx, aligner, set, text)
			if warn != nil {
				warnings = append(warnings, *warn)
			}
			for _, s := range setScenes {
				s.Index = len(scenes)
				scenes = append(scenes, s)
				input = append(input, builder.SceneMedia{Scene: s, AudioPath: set.AudioPath, VisualPath: set.VisualPath})
			}
		}
		if len(paragraphs) > len(matched.Sets) {
			warnings = append(warnings, services.Warnf(req.ScriptPath, "%d paragraphs have no media set", len(paragraphs)-len(matched.Sets)))
		}

		result, err := r.builder(logger).Build(ctx, input, r.canvas(), req.Output)
		if err != nil {
			return Outcome{}, err
		}
		warnings = append(warnings, confidenceWarnings(scenes, req.AudioDir)...)
		return Outcome{Path: result.Path, Scenes: scenes, Clips: result.Clips, Warnings: warnings}, nil
	})
}

// scenesForSet derives the scenes of one media set. A set without a timestamp
// file becomes a single scene spanning the probed audio duration. A set with
// no script paragraph keeps an empty caption, since recognized text is never
// used as a caption. Nil scenes mean the set is skipped.
func (r *Runner) scenesForSet(ctx context.Context, aligner alignment.Aligner, set mediaset.MediaSet, text string) ([]alignment.Scene, *services.Warning) {
	if !set.HasTimestamps() {
		info, err := r.prober().ProbeAudio(ctx, set.AudioPath)
		if err == nil && info.Duration <= 0 {
			err = errors.New("zero duration")
		}
		if err != nil {
			w := services.Warnf(set.AudioPath, "no timestamps and audio duration unknown, set skipped: %v", err)
			return nil, &w
		}
		return withScript([]alignment.Scene{{Text: text, EndMS: int64(info.Duration * 1000)}}, set.AudioPath, text, "")
	}

	words, err := transcript.ParseFile(set.TimestampPath)
	if err != nil {
		w := services.Warnf(set.TimestampPath, "timestamps unusable: %v", err)
		return nil, &w
	}
	if strings.TrimSpace(text) == "" {
		if len(words) == 0 {
			w := services.Warnf(set.TimestampPath, "timestamps unusable: no words")
			return nil, &w
		}
		start, end := transcript.Span(words)
		return withScript([]alignment.Scene{{StartMS: start, EndMS: end, Timestamps: words}}, set.AudioPath, text, transcript.FullText(words))
	}
	scenes, err := aligner.Align(text, words)
	if err != nil {
		w := services.Warnf(set.TimestampPath, "alignment failed: %v", err)
		return nil, &w
	}
	return scenes, nil
}

// withScript flags scenes that have no script text to caption them. heard is
// the recognized text, quoted in the warning only.
func withScript(scenes []alignment.Scene, subject, text, heard string) ([]alignment.Scene, *services.Warning) {
	if strings.TrimSpace(text) != "" {
		return scenes, nil
	}
	w := services.Warnf(subject, "no script paragraph for this set, caption left empty")
	if heard != "" {
		w = services.Warnf(subject, "no script paragraph for this set, caption left empty (heard %q)", preview(heard))
	}
	return scenes, &w
}

// Autofill runs the injection flow.
func (r *Runner) Autofill(ctx context.Context, req AutofillRequest) (Outcome, error) {
	return r.run(ctx, history.OperationAutofill, func(ctx context.Context, logger *slog.Logger) (Outcome, error) {
		media := append([]string(nil), req.Media...)
		if req.MediaDir != "" {
			files, err := mediaset.ListDir(req.MediaDir, nil)
			if err != nil {
				return Outcome{}, err
			}
			media = append(media, files...)
		}
		output := req.Output
		if output == "" {
			output = req.Archive
		}
		if abs, err := filepath.Abs(output); err == nil {
			output = abs
		}
		result, err := r.engine(logger).Autofill(ctx, req.Archive, media, output)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{
			Path:     result.Path,
			Clips:    len(result.Project.Clips()),
			Injected: result.Injected,
			Warnings: result.Warnings,
		}, nil
	})
}
