package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, []string{"all"}, cfg.EnabledTools)
}

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(EnvDataDir, tmpDir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)

	path := filepath.Join(tmpDir, "config.json")
	_, err = os.Stat(path)
	require.NoError(t, err, "config.json should be written on first Load")
}

func TestLoadPreservesNewerKeysNotInOlderFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(EnvDataDir, tmpDir)

	path, err := Path()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 9001}`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Port)
	assert.Equal(t, []string{"all"}, cfg.EnabledTools, "missing key should fall back to default, not zero out")
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(EnvDataDir, tmpDir)

	cfg := Config{Port: 9100, EnabledTools: []string{"write_file", "edit_file"}}
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDirHonorsEnvOverride(t *testing.T) {
	t.Setenv(EnvDataDir, "/tmp/custom-ccw-dir")
	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-ccw-dir", dir)
}

func TestResolveEnabledToolsEnvWinsOverConfig(t *testing.T) {
	cfg := Config{EnabledTools: []string{"session_manager"}}
	t.Setenv(EnvEnabledTools, "write_file,edit_file")

	got := ResolveEnabledTools(cfg)
	assert.Equal(t, []string{"write_file", "edit_file"}, got)
}

func TestResolveEnabledToolsFallsBackToConfig(t *testing.T) {
	cfg := Config{EnabledTools: []string{"smart_search"}}
	got := ResolveEnabledTools(cfg)
	assert.Equal(t, []string{"smart_search"}, got)
}

func TestToolEnabled(t *testing.T) {
	assert.True(t, ToolEnabled([]string{"all"}, "anything"))
	assert.True(t, ToolEnabled([]string{"write_file", "edit_file"}, "write_file"))
	assert.False(t, ToolEnabled([]string{"write_file"}, "edit_file"))
	assert.False(t, ToolEnabled(nil, "write_file"))
}

func TestResolvePortEnvWinsOverConfig(t *testing.T) {
	cfg := Config{Port: 9200}
	t.Setenv(EnvPort, "7777")
	assert.Equal(t, 7777, ResolvePort(cfg))
}

func TestResolvePortFallsBackToConfigThenDefault(t *testing.T) {
	assert.Equal(t, 9200, ResolvePort(Config{Port: 9200}))
	assert.Equal(t, DefaultPort, ResolvePort(Config{}))
}

func TestResolvePortIgnoresMalformedEnv(t *testing.T) {
	t.Setenv(EnvPort, "not-a-port")
	assert.Equal(t, DefaultPort, ResolvePort(Config{}))
}

func TestSplitNonEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitNonEmpty("a, b ,c"))
	assert.Equal(t, []string{}, splitNonEmpty(""))
}
