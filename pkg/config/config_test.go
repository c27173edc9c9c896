package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfigMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
selected_provider: anthropic
narrator:
  timeout: 5s
scan:
  inventory: /srv/inventory.yaml
`), 0o600))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.SelectedProvider)
	assert.Equal(t, 5*time.Second, cfg.Narrator.Timeout)
	assert.True(t, cfg.Narrator.Enabled)
	assert.Equal(t, 4, cfg.Narrator.Concurrency)
	assert.Equal(t, "/srv/inventory.yaml", cfg.Scan.Inventory)
	assert.NotNil(t, cfg.Providers)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"provider":    "selected_provider: mistral\n",
		"concurrency": "scan:\n  concurrency: -1\n",
		"rate":        "narrator:\n  rate_per_second: -2\n",
		"yaml":        "narrator: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := LoadConfigFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	t.Setenv(EnvConfigPath, path)

	got, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, path, got)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	cfg.SelectedProvider = "openai"
	cfg.SelectedModel = "gpt-4o"
	cfg.SetAPIKey("openai", "sk-stored")
	cfg.Narrator.Timeout = 45 * time.Second
	require.NoError(t, SaveConfig(cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}

func TestGetAPIKeyFallsBackToEnvironment(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "from-env")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := Default()
	assert.Equal(t, "from-env", cfg.GetAPIKey("gemini"))
	assert.Empty(t, cfg.GetAPIKey("openai"))
	assert.Empty(t, cfg.GetAPIKey("unknown"))

	cfg.SetAPIKey("gemini", "stored")
	assert.Equal(t, "stored", cfg.GetAPIKey("gemini"))
}
