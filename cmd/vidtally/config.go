package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/vidtally/pkg/vidtally/config"
	"github.com/jamesainslie/vidtally/pkg/vidtally/report"
	"github.com/jamesainslie/vidtally/pkg/vidtally/tuner"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage vidtally configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/vidtally/config.yaml (if set)
  2. ~/.config/vidtally/config.yaml

Environment variables can override config file settings using the VIDTALLY_ prefix:
  VIDTALLY_WORKERS=4
  VIDTALLY_FFPROBE=/opt/ffmpeg/bin/ffprobe
  VIDTALLY_FORMAT=json`,
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  `Display the effective configuration after files, environment and flags.`,
		RunE:  a.runConfigShow,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Long:  `Create a default configuration file if one doesn't exist.`,
		RunE:  a.runConfigInit,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		RunE:  a.runConfigPath,
	})

	return configCmd
}

func (a *app) runConfigShow(*cobra.Command, []string) error {
	cfg := a.cfg
	out := a.out

	if used := a.v.ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			fmt.Fprintf(out, "Config file: %s\n\n", used)
		} else {
			fmt.Fprintf(out, "Config file: (using defaults, no file found)\n\n")
		}
	} else {
		fmt.Fprintf(out, "Config file: (using defaults, no file found)\n\n")
	}

	workers := fmt.Sprintf("%d", cfg.Workers)
	if cfg.Workers <= 0 {
		resources, _ := tuner.Detect()
		workers = fmt.Sprintf("auto (%d)", tuner.Workers(resources))
	}
	probeTimeout := "none"
	if cfg.ProbeTimeout > 0 {
		probeTimeout = cfg.ProbeTimeout.String()
	}
	logPath := cfg.Logging.Path
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}

	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintln(out, "----------------------")
	fmt.Fprintf(out, "extensions:           %s\n", strings.Join(cfg.Extensions, ", "))
	fmt.Fprintf(out, "ignore_case:          %t\n", cfg.IgnoreCase)
	fmt.Fprintf(out, "exclude:              %v\n", cfg.Exclude)
	fmt.Fprintf(out, "workers:              %s\n", workers)
	fmt.Fprintf(out, "ffprobe:              %s\n", cfg.FFProbe)
	fmt.Fprintf(out, "probe_timeout:        %s\n", probeTimeout)
	fmt.Fprintf(out, "output_dir:           %s\n", cfg.OutputDir)
	fmt.Fprintf(out, "format:               %s (available: %s)\n", cfg.Format, strings.Join(report.Available(), ", "))
	fmt.Fprintf(out, "logging.level:        %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "logging.path:         %s\n", logPath)
	fmt.Fprintf(out, "logging.rotation:     max %s, %d backups, %d days, daily=%t\n",
		cfg.Logging.Rotation.MaxSize, cfg.Logging.Rotation.MaxBackups,
		cfg.Logging.Rotation.MaxAge, cfg.Logging.Rotation.Daily)

	fmt.Fprintln(out, "\nEnvironment Overrides:")
	fmt.Fprintln(out, "----------------------")
	found := false
	for _, name := range []string{
		"VIDTALLY_EXTENSIONS", "VIDTALLY_IGNORE_CASE", "VIDTALLY_EXCLUDE",
		"VIDTALLY_WORKERS", "VIDTALLY_FFPROBE", "VIDTALLY_PROBE_TIMEOUT",
		"VIDTALLY_OUTPUT_DIR", "VIDTALLY_FORMAT", "VIDTALLY_LOGGING_LEVEL",
	} {
		if val := os.Getenv(name); val != "" {
			fmt.Fprintf(out, "%s=%s\n", name, val)
			found = true
		}
	}
	if !found {
		fmt.Fprintln(out, "(none)")
	}
	return nil
}

func (a *app) runConfigInit(*cobra.Command, []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}

	existed := true
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		existed = false
	}

	if err := config.WriteDefault(); err != nil {
		return err
	}

	if existed {
		fmt.Fprintf(a.out, "Config file already exists: %s\n", path)
	} else {
		fmt.Fprintf(a.out, "Created config file: %s\n", path)
	}
	return nil
}

func (a *app) runConfigPath(*cobra.Command, []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, path)
	return nil
}
