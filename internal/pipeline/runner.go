package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"scenecraft/internal/alignment"
	"scenecraft/internal/autofill"
	"scenecraft/internal/builder"
	"scenecraft/internal/config"
	"scenecraft/internal/history"
	"scenecraft/internal/ids"
	"scenecraft/internal/logging"
	"scenecraft/internal/media/ffprobe"
	"scenecraft/internal/project"
	"scenecraft/internal/services"
)

// LowConfidenceThreshold flags scenes whose text barely resembles the
// recognized words they were given.
const LowConfidenceThreshold = 0.3

// Runner executes flows with shared configuration. Prober, IDs and History
// are optional.
type Runner struct {
	Config  *config.Config
	Logger  *slog.Logger
	Prober  ffprobe.Prober
	IDs     ids.Generator
	History *history.Store
	Now     func() time.Time
}

// Outcome summarizes a finished flow.
type Outcome struct {
	RequestID string
	Operation history.Operation
	Path      string
	Scenes    []alignment.Scene
	Clips     int
	Injected  int
	Warnings  []services.Warning
}

type flowFunc func(ctx context.Context, logger *slog.Logger) (Outcome, error)

// run wraps a flow with request scoping, lifecycle logging and history.
func (r *Runner) run(ctx context.Context, op history.Operation, flow flowFunc) (Outcome, error) {
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
		ctx = services.WithRequestID(ctx, requestID)
	}
	ctx = services.WithOperation(ctx, string(op))
	logger := logging.WithContext(ctx, r.logger())

	started := r.now()
	logger.Info("operation started", logging.String(logging.FieldEventType, "operation_start"))

	outcome, err := flow(ctx, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "operation failed", "operation_failure",
			logging.Error(err),
			logging.Int("exit_code", services.ExitCode(err)),
		)
		return Outcome{}, err
	}
	outcome.RequestID = requestID
	outcome.Operation = op

	for _, w := range outcome.Warnings {
		logging.WarnWithContext(logger, "input skipped", "item_warning",
			logging.String(logging.FieldSubject, w.Subject),
			logging.String("reason", w.Message),
		)
	}
	logger.Info("operation completed",
		logging.String(logging.FieldEventType, "operation_complete"),
		logging.String("output", outcome.Path),
		logging.Int("clips", outcome.Clips),
		logging.Int("warnings", len(outcome.Warnings)),
		logging.Duration("elapsed", r.now().Sub(started)),
	)

	r.record(ctx, logger, outcome)
	return outcome, nil
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, outcome Outcome) {
	if r.History == nil {
		return
	}
	_, err := r.History.Record(ctx, history.Entry{
		RequestID: outcome.RequestID,
		Operation: outcome.Operation,
		Output:    outcome.Path,
		Scenes:    outcome.Clips,
		Warnings:  len(outcome.Warnings),
		CreatedAt: r.now(),
	})
	if err != nil {
		logging.WarnWithContext(logger, "history entry not recorded", "history_failure",
			logging.Error(err),
			logging.String(logging.FieldImpact, "archive was written; ledger is missing this run"),
		)
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.NewNop()
	}
	return r.Logger
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Runner) config() *config.Config {
	if r.Config == nil {
		cfg := config.Default()
		r.Config = &cfg
	}
	return r.Config
}

func (r *Runner) idGenerator() ids.Generator {
	if r.IDs == nil {
		return ids.UUID()
	}
	return r.IDs
}

func (r *Runner) prober() ffprobe.Prober {
	if r.Prober != nil {
		return r.Prober
	}
	return ffprobe.CommandProber{Binary: r.config().FFprobeBinary()}
}

// Aligner returns the alignment engine configured from Config.
func (r *Runner) Aligner(logger *slog.Logger) alignment.Aligner {
	cfg := r.config().Alignment
	return alignment.Aligner{
		MaxChars:     cfg.MaxChars,
		Tolerance:    cfg.Tolerance,
		WindowFactor: cfg.WindowFactor,
		Logger:       logging.NewComponentLogger(logger, "alignment"),
	}
}

func (r *Runner) builder(logger *slog.Logger) *builder.Builder {
	cfg := r.config()
	return &builder.Builder{
		IDs:              r.idGenerator(),
		Prober:           r.prober(),
		Logger:           logger,
		SilenceGapMS:     int64(cfg.Alignment.SilenceGapMS),
		ProbeConcurrency: cfg.Probe.Concurrency,
		VideoDefaults:    videoDefaults(cfg),
		AudioDefaults:    ffprobe.DefaultAudio,
		ImagePlacement:   cfg.Assets.Placement(),
		Now:              r.now,
	}
}

func (r *Runner) engine(logger *slog.Logger) *autofill.Engine {
	cfg := r.config()
	return &autofill.Engine{
		WorkRoot:       cfg.Paths.WorkDir,
		IDs:            r.idGenerator(),
		Prober:         r.prober(),
		Logger:         logger,
		VideoDefaults:  videoDefaults(cfg),
		ImagePlacement: cfg.Assets.Placement(),
		Now:            r.now,
	}
}

func (r *Runner) canvas() project.Canvas {
	cfg := r.config().Canvas
	return project.Canvas{Width: cfg.Width, Height: cfg.Height}
}

func videoDefaults(cfg *config.Config) ffprobe.VideoInfo {
	return ffprobe.VideoInfo{
		Width:     cfg.Probe.DefaultWidth,
		Height:    cfg.Probe.DefaultHeight,
		FrameRate: cfg.Probe.DefaultFPS,
		Duration:  cfg.Probe.DefaultDuration,
	}
}

// confidenceWarnings flags scenes that matched poorly or fell back to
// proportional timing.
func confidenceWarnings(scenes []alignment.Scene, subject string) []services.Warning {
	var warnings []services.Warning
	for _, s := range scenes {
		if len(s.Timestamps) == 0 || s.Text == "" || s.Confidence >= LowConfidenceThreshold {
			continue
		}
		warnings = append(warnings, services.Warnf(subject,
			"scene %d %q aligned with low confidence %.2f", s.Index+1, preview(s.Text), s.Confidence))
	}
	return warnings
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= 32 {
		return text
	}
	return string(runes[:31]) + "…"
}

func readError(component, path string, err error) error {
	return services.Wrap(services.ErrInput, component, "read", fmt.Sprintf("read %s", path), err)
}
