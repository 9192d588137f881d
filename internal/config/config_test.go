package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/gox/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, &config.Config{MaxSteps: 10_000_000}, cfg)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, &config.Config{MaxSteps: 10_000_000}, cfg)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
debug: true
maxSteps: 5000
maxMemory: 2048
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.True(t, cfg.Debug)
	require.Equal(t, 5000, cfg.MaxSteps)
	require.Equal(t, 2048, cfg.MaxMemory)
}

func TestLoadMalformedYAMLFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gox.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug: [not a bool"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, &config.Config{MaxSteps: 10_000_000}, cfg)
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gox.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxSteps: 5000\n"), 0o644))

	t.Setenv("GOX_MAX_STEPS", "99")
	t.Setenv("GOX_DEBUG", "true")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 99, cfg.MaxSteps)
	require.True(t, cfg.Debug)
}
