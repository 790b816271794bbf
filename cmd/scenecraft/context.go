package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"scenecraft/internal/config"
	"scenecraft/internal/history"
	"scenecraft/internal/logging"
	"scenecraft/internal/pipeline"
	"scenecraft/internal/services"
	"scenecraft/internal/textutil"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	history *history.Store
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "prepare directories", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// runner assembles a pipeline runner. The history ledger is opened lazily;
// when it cannot be opened the run proceeds without it.
func (c *commandContext) runner() (*pipeline.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.loggerValue()
	runner := &pipeline.Runner{Config: cfg, Logger: logger}
	if cfg.History.Enabled {
		if store, err := c.historyStore(); err != nil {
			logging.WarnWithContext(logger, "history ledger unavailable", "history_unavailable",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run will not be recorded"),
			)
		} else {
			runner.History = store
		}
	}
	return runner, nil
}

func (c *commandContext) historyStore() (*history.Store, error) {
	if c.history != nil {
		return c.history, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		return nil, err
	}
	c.history = store
	return store, nil
}

func (c *commandContext) close() error {
	if c.history == nil {
		return nil
	}
	err := c.history.Close()
	c.history = nil
	return err
}

// defaultOutput places an archive named after source in the output directory.
func (c *commandContext) defaultOutput(source, suffix string) string {
	cfg := c.configValue()
	name := textutil.SanitizeToken(textutil.Stem(source)) + suffix + ".zip"
	if cfg == nil {
		return name
	}
	return filepath.Join(cfg.Paths.OutputDir, name)
}

func resolvePath(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	expanded, err := config.ExpandPath(value)
	if err != nil {
		return "", services.Wrap(services.ErrInput, "cli", "resolve path", value, err)
	}
	return expanded, nil
}

func requirePath(flag, value string) (string, error) {
	path, err := resolvePath(value)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", services.Wrap(services.ErrInput, "cli", "flags", fmt.Sprintf("--%s is required", flag), nil)
	}
	return path, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
