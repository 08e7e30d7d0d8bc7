package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/vidtally/pkg/vidtally/config"
	"github.com/jamesainslie/vidtally/pkg/vidtally/logging"
)

func TestParseRotationConfig(t *testing.T) {
	tests := []struct {
		name     string
		input    config.RotationConfig
		expected logging.RotationConfig
	}{
		{
			name: "default values",
			input: config.RotationConfig{
				MaxSize:    "10MB",
				MaxAge:     30,
				MaxBackups: 5,
				Daily:      true,
			},
			expected: logging.RotationConfig{
				MaxSize:    10 * 1024 * 1024,
				MaxAge:     30,
				MaxBackups: 5,
				Daily:      true,
			},
		},
		{
			name: "custom size in gigabytes",
			input: config.RotationConfig{
				MaxSize:    "1G",
				MaxAge:     7,
				MaxBackups: 3,
			},
			expected: logging.RotationConfig{
				MaxSize:    1024 * 1024 * 1024,
				MaxAge:     7,
				MaxBackups: 3,
			},
		},
		{
			name:     "empty max_size uses default",
			input:    config.RotationConfig{MaxAge: 14, MaxBackups: 2, Daily: true},
			expected: logging.RotationConfig{MaxSize: 10 * 1024 * 1024, MaxAge: 14, MaxBackups: 2, Daily: true},
		},
		{
			name:     "invalid max_size uses default",
			input:    config.RotationConfig{MaxSize: "invalid", MaxAge: 21, MaxBackups: 4},
			expected: logging.RotationConfig{MaxSize: 10 * 1024 * 1024, MaxAge: 21, MaxBackups: 4},
		},
		{
			name:     "zero max_size uses default",
			input:    config.RotationConfig{MaxSize: "0"},
			expected: logging.RotationConfig{MaxSize: 10 * 1024 * 1024},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRotationConfig(tt.input); got != tt.expected {
				t.Errorf("parseRotationConfig() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestBootstrapCreatesDirectoriesAndLog(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "cfg"))
	logPath := filepath.Join(home, "logs", "vidtally.log")
	t.Setenv("VIDTALLY_LOGGING_PATH", logPath)
	t.Cleanup(func() { _ = logging.Close() })

	var out bytes.Buffer
	a := newApp(strings.NewReader(""), &out, &out)
	cmd := newRootCmd(a)

	if err := a.bootstrap(cmd, nil); err != nil {
		t.Fatalf("bootstrap() error = %v", err)
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if _, err := os.Stat(configDir); err != nil {
		t.Errorf("config directory was not created: %s", configDir)
	}
	if _, err := os.Stat(config.StateDir()); err != nil {
		t.Errorf("state directory was not created: %s", config.StateDir())
	}
	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file was not opened at %s: %v", logPath, err)
	}
	if a.cfg == nil || a.cfg.Logging.Path != logPath {
		t.Errorf("logging path from environment not applied: %+v", a.cfg)
	}
}

func TestBootstrapMissingConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	var out bytes.Buffer
	a := newApp(strings.NewReader(""), &out, &out)
	cmd := newRootCmd(a)
	// Flag registration resets cfgFile, so set it after building the command.
	a.cfgFile = missing

	err := a.bootstrap(cmd, nil)
	if err == nil {
		t.Fatal("bootstrap() should fail for a missing --config file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("bootstrap() error = %v, want a not-exist error", err)
	}
}

func TestMissingConfigFlagFailsCommand(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	out, err := runCLI(t, "", "--config="+missing, t.TempDir())
	if err == nil {
		t.Fatal("command should fail for a missing --config file")
	}
	if !strings.Contains(err.Error(), "nope.yaml") {
		t.Errorf("error = %v, want it to name the missing file", err)
	}
	if strings.Contains(out, "Searching") {
		t.Errorf("no scan should start, got %q", out)
	}
}

func TestNewRunID(t *testing.T) {
	a, b := newRunID(), newRunID()
	if len(a) != 36 || a == b {
		t.Errorf("newRunID() = %q, %q; want distinct UUIDs", a, b)
	}
}
