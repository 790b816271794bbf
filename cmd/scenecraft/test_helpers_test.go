package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"scenecraft/internal/config"
	"scenecraft/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	cfg.Logging.Level = "error"

	configPath := filepath.Join(homeDir, ".config", "scenecraft", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	testsupport.WriteBytes(t, path, data)
}

// writeNarration lays out a two-paragraph script, its timestamps and a
// narration file under the env base directory.
func (e *cliTestEnv) writeNarration(t *testing.T) (script, stamps, audio string) {
	t.Helper()
	script = filepath.Join(e.baseDir, "story.txt")
	testsupport.WriteBytes(t, script, []byte("Hello there.\n\nGeneral Kenobi.\n"))
	stamps = filepath.Join(e.baseDir, "story.json")
	data, err := json.Marshal(testsupport.Timestamps(0, "Hello", "there.", "General", "Kenobi."))
	if err != nil {
		t.Fatal(err)
	}
	testsupport.WriteBytes(t, stamps, data)
	audio = filepath.Join(e.baseDir, "story.wav")
	testsupport.WriteFile(t, audio, 64)
	return script, stamps, audio
}

func decodeJSON[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return v
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

