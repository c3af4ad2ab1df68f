package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rawdd/internal/config"
)

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.BlockSize)
	assert.Nil(t, cfg.Defaults.BWLimit)
	assert.Nil(t, cfg.Defaults.Verify)
	assert.Nil(t, cfg.Defaults.NoProgress)
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "rawdd")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	content := `
[defaults]
block_size = "1M"
bwlimit = "100M"
verify = true
no_progress = false
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))

	cfg, err := config.Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Defaults.BlockSize)
	assert.Equal(t, "1M", *cfg.Defaults.BlockSize)

	require.NotNil(t, cfg.Defaults.BWLimit)
	assert.Equal(t, "100M", *cfg.Defaults.BWLimit)

	require.NotNil(t, cfg.Defaults.Verify)
	assert.True(t, *cfg.Defaults.Verify)

	require.NotNil(t, cfg.Defaults.NoProgress)
	assert.False(t, *cfg.Defaults.NoProgress)
}

func TestLoad_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "rawdd")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	content := `
[defaults]
verify = true
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))

	cfg, err := config.Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Defaults.Verify)
	assert.True(t, *cfg.Defaults.Verify)
	assert.Nil(t, cfg.Defaults.BlockSize)
	assert.Nil(t, cfg.Defaults.BWLimit)
}

func TestLoad_MalformedConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "rawdd")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte("not toml ["), 0o644))

	_, err := config.Load()
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "rawdd", "config.toml"), config.Path())
}
