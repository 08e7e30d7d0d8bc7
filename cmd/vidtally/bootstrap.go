package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/vidtally/pkg/vidtally/config"
	"github.com/jamesainslie/vidtally/pkg/vidtally/logging"
	"github.com/jamesainslie/vidtally/pkg/vidtally/types"
)

// bootstrap is the PersistentPreRunE hook: it loads configuration, makes
// sure the XDG directories exist, and starts logging.
func (a *app) bootstrap(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := ensureDirectories(); err != nil {
		return err
	}

	consoleLevel := ""
	if a.verbose() {
		consoleLevel = "debug"
	}
	if err := initializeLogging(cfg.Logging, consoleLevel, a); err != nil {
		return err
	}

	logging.Get("cli").Debug("configuration loaded",
		"command", cmd.Name(),
		"config_file", a.v.ConfigFileUsed(),
	)
	return nil
}

// ensureDirectories creates the config and state directories.
func ensureDirectories() error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	for _, dir := range []string{configDir, config.StateDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

func initializeLogging(cfg config.LoggingConfig, consoleLevel string, a *app) error {
	path := cfg.Path
	if path == "" {
		path = config.DefaultLogPath()
	} else if expanded, err := config.ExpandPath(path); err == nil {
		path = expanded
	}

	logCfg := logging.Config{
		Level:        cfg.Level,
		Path:         path,
		Rotation:     parseRotationConfig(cfg.Rotation),
		Components:   cfg.Components,
		ConsoleLevel: consoleLevel,
	}
	if a != nil {
		logCfg.Console = a.errOut
	}

	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	return nil
}

// parseRotationConfig converts the config file's rotation settings,
// falling back to 10MB when max_size is empty or unparseable.
func parseRotationConfig(cfg config.RotationConfig) logging.RotationConfig {
	maxSize := logging.DefaultRotationConfig().MaxSize
	if cfg.MaxSize != "" {
		if parsed, err := types.ParseSize(cfg.MaxSize); err == nil && parsed > 0 {
			maxSize = parsed
		}
	}

	return logging.RotationConfig{
		MaxSize:    maxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
		Daily:      cfg.Daily,
	}
}

// newRunID tags every log line of one tally run.
func newRunID() string {
	return uuid.NewString()
}
