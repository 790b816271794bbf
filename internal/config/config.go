package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"scenecraft/internal/project"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	HistoryDB string `toml:"history_db"`
}

// Alignment contains script-to-transcript alignment tuning.
type Alignment struct {
	// MaxChars bounds scene text length; 0 disables splitting.
	MaxChars int `toml:"max_chars"`
	// Tolerance is the number of characters a paragraph may exceed MaxChars
	// before it is split.
	Tolerance    int `toml:"tolerance"`
	WindowFactor int `toml:"window_factor"`
	// SilenceGapMS is the minimum pause between words that becomes a silence word.
	SilenceGapMS int `toml:"silence_gap_ms"`
}

// Canvas contains the project canvas dimensions in pixels.
type Canvas struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Assets contains default geometry for injected image assets. Values are
// fractions of the canvas; X/Y locate the asset centre.
type Assets struct {
	ImageX      float64 `toml:"image_x"`
	ImageY      float64 `toml:"image_y"`
	ImageWidth  float64 `toml:"image_width"`
	ImageHeight float64 `toml:"image_height"`
}

// Placement returns the configured image geometry.
func (a Assets) Placement() project.Placement {
	return project.Placement{
		Position: project.Point{X: a.ImageX, Y: a.ImageY},
		Size:     project.Size{Width: a.ImageWidth, Height: a.ImageHeight},
	}
}

// Probe contains media metadata probing configuration.
type Probe struct {
	FFprobeBinary   string  `toml:"ffprobe_binary"`
	Concurrency     int     `toml:"concurrency"`
	DefaultWidth    int     `toml:"default_width"`
	DefaultHeight   int     `toml:"default_height"`
	DefaultFPS      float64 `toml:"default_fps"`
	DefaultDuration float64 `toml:"default_duration_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History contains configuration for the archive ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for scenecraft.
//
// Configuration sections by subsystem:
//   - Paths: working, output, log, and history locations
//   - Alignment: scene length limits and matcher tuning
//   - Canvas: project canvas size
//   - Assets: default image overlay geometry
//   - Probe: ffprobe binary and fallback metadata
//   - Logging: log format and level
//   - History: SQLite ledger of produced archives
type Config struct {
	Paths     Paths     `toml:"paths"`
	Alignment Alignment `toml:"alignment"`
	Canvas    Canvas    `toml:"canvas"`
	Assets    Assets    `toml:"assets"`
	Probe     Probe     `toml:"probe"`
	Logging   Logging   `toml:"logging"`
	History   History   `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/scenecraft/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return "", false, fmt.Errorf("config file %s not found", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("scenecraft.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the working and log directories. The output
// directory is created lazily by the commands that write into it.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFprobeBinary returns the ffprobe executable used for media probing.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Probe.FFprobeBinary); bin != "" {
		return bin
	}
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
