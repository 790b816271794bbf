package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAlignment()
	c.normalizeProbe()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("SCENECRAFT_WORK_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.WorkDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeAlignment() {
	if c.Alignment.Tolerance < 0 {
		c.Alignment.Tolerance = 0
	}
	if c.Alignment.WindowFactor <= 0 {
		c.Alignment.WindowFactor = defaultWindowFactor
	}
	if c.Alignment.SilenceGapMS <= 0 {
		c.Alignment.SilenceGapMS = defaultSilenceGapMS
	}
}

func (c *Config) normalizeProbe() {
	c.Probe.FFprobeBinary = strings.TrimSpace(c.Probe.FFprobeBinary)
	if c.Probe.FFprobeBinary == "" {
		c.Probe.FFprobeBinary = defaultProbeBinary
	}
	if c.Probe.Concurrency <= 0 {
		c.Probe.Concurrency = defaultProbeWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "":
		c.Logging.Format = defaultLogFormat
	case "auto", "console", "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
