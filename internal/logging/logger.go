package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"scenecraft/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level string
	// Format is console, json, or auto. Auto picks console when the first
	// terminal output is a TTY and json otherwise.
	Format      string
	OutputPaths []string
	// FilePath, when set, receives a JSON copy of every record regardless of Format.
	FilePath    string
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	outputs := defaultSlice(opts.OutputPaths, []string{"stderr"})
	outputWriter, err := openWriters(outputs)
	if err != nil {
		return nil, err
	}

	addSource := opts.Development || level <= slog.LevelDebug

	format, err := resolveFormat(opts.Format, outputs)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(outputWriter, levelVar, addSource)
	default:
		handler = newPrettyHandler(outputWriter, levelVar, addSource)
	}

	if path := strings.TrimSpace(opts.FilePath); path != "" {
		fileWriter, err := openWriters([]string{path})
		if err != nil {
			return nil, err
		}
		handler = newFanoutHandler(handler, newJSONHandler(fileWriter, levelVar, addSource))
	}

	return slog.New(handler), nil
}

// NewFromConfig creates a logger using application config defaults.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "auto"})
	}

	opts := Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		opts.FilePath = filepath.Join(cfg.Paths.LogDir, "scenecraft.log")
	}
	return New(opts)
}

func resolveFormat(format string, outputs []string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "", "auto":
		if isTerminal(outputs) {
			return "console", nil
		}
		return "json", nil
	case "console", "json":
		return format, nil
	default:
		return "", fmt.Errorf("log format: unsupported value %q", format)
	}
}

func isTerminal(outputs []string) bool {
	if len(outputs) == 0 {
		return false
	}
	var fd uintptr
	switch strings.TrimSpace(outputs[0]) {
	case "stdout":
		fd = os.Stdout.Fd()
	case "stderr":
		fd = os.Stderr.Fd()
	default:
		return false
	}
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		return append([]string(nil), fallback...)
	}
	return append([]string(nil), value...)
}

func openWriters(paths []string) (io.Writer, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer

	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if dir := filepath.Dir(trimmed); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("create log directory %s: %w", dir, err)
				}
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
