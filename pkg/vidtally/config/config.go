package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// appName names the XDG subdirectories and the environment prefix.
const appName = "vidtally"

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// Config represents the application configuration.
type Config struct {
	Extensions   []string      `mapstructure:"extensions"`
	IgnoreCase   bool          `mapstructure:"ignore_case"`
	Exclude      []string      `mapstructure:"exclude"`
	Workers      int           `mapstructure:"workers"`
	FFProbe      string        `mapstructure:"ffprobe"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	OutputDir    string        `mapstructure:"output_dir"`
	Format       string        `mapstructure:"format"`
	Logging      LoggingConfig `mapstructure:"logging"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("extensions", DefaultExtensions)
	v.SetDefault("ignore_case", false)
	v.SetDefault("exclude", []string{})
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("ffprobe", DefaultFFProbe)
	v.SetDefault("probe_timeout", time.Duration(0))
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("format", DefaultFormat)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.rotation.max_size", DefaultLogMaxSize)
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"discover": "info",
		"resolver": "info",
		"probe":    "info",
		"report":   "info",
	})
}

// Load reads configuration into v, which may already carry bound flags.
// An explicit file must exist; otherwise config.yaml is looked up in
// (in order of precedence):
//   - $XDG_CONFIG_HOME/vidtally/config.yaml
//   - $HOME/.config/vidtally/config.yaml
//
// Environment variables are prefixed with VIDTALLY_ (e.g., VIDTALLY_WORKERS).
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(file)
	} else if err := AddConfigPaths(v); err != nil {
		return nil, err
	}
	return LoadFrom(v)
}

// AddConfigPaths points v at config.yaml in the standard search locations.
func AddConfigPaths(v *viper.Viper) error {
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, appName))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", appName))
	return nil
}

// LoadFrom applies defaults and environment binding to v, reads its config
// file if one is configured, and unmarshals the result.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", appName), nil
}

// ConfigPath returns the path of the config file inside ConfigDir.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// StateDir returns $XDG_STATE_HOME/vidtally/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), appName+".log")
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigYAML()), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

func defaultConfigYAML() string {
	return fmt.Sprintf(`# vidtally configuration

# File name suffixes treated as media files (exact match unless ignore_case)
extensions:
  - %s
ignore_case: false

# Glob patterns for files or directories to skip
exclude: []

# Probe workers (0 = auto)
workers: %d

# Secondary probe command
ffprobe: %s

# Upper bound for one ffprobe invocation (0 = none)
probe_timeout: 0s

# Directory for --save reports (relative paths resolve against the executable)
output_dir: %s

# Console report format: text, pretty, json, yaml
format: %s

logging:
  # Log level: debug, info, warn, error
  level: %s
  # Log file path (empty means use default: $XDG_STATE_HOME/vidtally/vidtally.log)
  path: ""
  rotation:
    max_size: %s
    max_age: 30       # days
    max_backups: 5
    daily: true
  components:
    discover: info
    resolver: info
    probe: info
    report: info
`, DefaultExtensions[0], DefaultWorkers, DefaultFFProbe, DefaultOutputDir, DefaultFormat, DefaultLogLevel, DefaultLogMaxSize)
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// ResolveOutputDir returns dir unchanged when absolute; otherwise it is
// joined onto the directory holding the running executable.
func ResolveOutputDir(dir string) (string, error) {
	expanded, err := ExpandPath(dir)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expanded) {
		return expanded, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return filepath.Join(filepath.Dir(exe), expanded), nil
}
