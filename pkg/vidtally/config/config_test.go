package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultExtensions, cfg.Extensions)
	assert.False(t, cfg.IgnoreCase)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultFFProbe, cfg.FFProbe)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, time.Duration(0), cfg.ProbeTimeout)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogMaxSize, cfg.Logging.Rotation.MaxSize)
	assert.Equal(t, 5, cfg.Logging.Rotation.MaxBackups)
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "vidtally")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	configContent := `
extensions:
  - .mp4
  - .m4v
ignore_case: true
workers: 3
ffprobe: /opt/ffmpeg/bin/ffprobe
probe_timeout: 30s
output_dir: /var/reports
format: json
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0o644))

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{".mp4", ".m4v"}, cfg.Extensions)
	assert.True(t, cfg.IgnoreCase)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "/opt/ffmpeg/bin/ffprobe", cfg.FFProbe)
	assert.Equal(t, 30*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, "/var/reports", cfg.OutputDir)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_XDGConfigHome(t *testing.T) {
	tempDir := t.TempDir()
	xdgDir := filepath.Join(tempDir, "xdg-config", "vidtally")
	require.NoError(t, os.MkdirAll(xdgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdgDir, "config.yaml"), []byte("workers: 7\n"), 0o644))

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "xdg-config"))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
}

func TestLoad_EnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("VIDTALLY_WORKERS", "2")
	t.Setenv("VIDTALLY_FORMAT", "yaml")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "yaml", cfg.Format)
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: pretty\n"), 0o644))

	v := viper.New()
	cfg, err := Load(v, path)
	require.NoError(t, err)
	assert.Equal(t, "pretty", cfg.Format)
	assert.Equal(t, path, v.ConfigFileUsed())
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := Load(viper.New(), missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFrom_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [unterminated\n"), 0o644))

	v := viper.New()
	v.SetConfigFile(path)

	_, err := LoadFrom(v)
	assert.Error(t, err)
}

func TestWriteDefault(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	require.NoError(t, WriteDefault())

	path := filepath.Join(tempDir, "vidtally", "config.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "extensions:")
	assert.Contains(t, string(data), "ffprobe: ffprobe")

	// The written file must round-trip through Load.
	v := viper.New()
	v.SetConfigFile(path)
	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultExtensions, cfg.Extensions)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)

	// A second call leaves an existing file alone.
	require.NoError(t, os.WriteFile(path, []byte("workers: 9\n"), 0o644))
	require.NoError(t, WriteDefault())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "workers: 9\n", string(data))
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/videos")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "videos"), got)

	got, err = ExpandPath("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}

func TestResolveOutputDir(t *testing.T) {
	got, err := ResolveOutputDir("/tmp/reports")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/reports", got)

	got, err = ResolveOutputDir("reports")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "reports", filepath.Base(got))
}
