package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"scenecraft/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "logs", "history.db")
	cfgVal.Probe.FFprobeBinary = filepath.Join(base, "bin", "missing-ffprobe")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMaxChars sets the scene length limit on the test config.
func WithMaxChars(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Alignment.MaxChars = n
	}
}

// WithoutHistory disables the archive ledger.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithStubbedFFprobe writes an ffprobe stand-in that prints stdout and exits
// with code, and points the config at it.
func WithStubbedFFprobe(stdout string, code int) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, "ffprobe")
		script := "#!/bin/sh\ncat <<'JSON'\n" + stdout + "\nJSON\nexit " + strconv.Itoa(code) + "\n"
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write stub ffprobe: %v", err)
		}
		b.cfg.Probe.FFprobeBinary = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
