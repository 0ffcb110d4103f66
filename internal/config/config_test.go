package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:1234", cfg.Completion.Endpoint)
	assert.Equal(t, "llama3", cfg.Completion.Model)
	assert.Equal(t, 400, cfg.Completion.MaxTokens)
	assert.InDelta(t, 0.8, cfg.Completion.Temperature, 1e-9)
	assert.Equal(t, "./_03_COMPLETED_MOCKUPS", cfg.Paths.Assets)
	assert.Equal(t, "./_05_METADATA_DRAFTS", cfg.Paths.Metadata)
	assert.Equal(t, "./_06_METADATA_HISTORY", cfg.Paths.History)
	assert.Equal(t, 7, cfg.Inspector.ImproveBelow)
	assert.Equal(t, 64, cfg.Watcher.QueueSize)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
completion:
  endpoint: http://localhost:11434
  model: mistral
  temperature: 0.5
paths:
  assets: /data/mockups
inspector:
  improve_below: 6
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", cfg.Completion.Endpoint)
	assert.Equal(t, "mistral", cfg.Completion.Model)
	assert.InDelta(t, 0.5, cfg.Completion.Temperature, 1e-9)
	assert.Equal(t, "/data/mockups", cfg.Paths.Assets)
	assert.Equal(t, 6, cfg.Inspector.ImproveBelow)
	// Unset keys keep their defaults.
	assert.Equal(t, 400, cfg.Completion.MaxTokens)
	assert.Equal(t, "./_05_METADATA_DRAFTS", cfg.Paths.Metadata)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("COMPLETION_ENDPOINT", "http://completion:9000")
	t.Setenv("COMPLETION_MODEL", "phi3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://completion:9000", cfg.Completion.Endpoint)
	assert.Equal(t, "phi3", cfg.Completion.Model)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestEnsureDirs(t *testing.T) {
	base := t.TempDir()
	cfg := &Config{Paths: PathsConfig{
		Assets:   filepath.Join(base, "assets"),
		Metadata: filepath.Join(base, "metadata"),
		History:  filepath.Join(base, "history"),
		Logs:     filepath.Join(base, "logs"),
	}}
	require.NoError(t, cfg.EnsureDirs())
	for _, dir := range []string{"assets", "metadata", "history", "logs"} {
		info, err := os.Stat(filepath.Join(base, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
