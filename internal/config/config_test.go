package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "640x640", cfg.StreetView.Size)
	assert.Equal(t, 80, cfg.StreetView.FOV)
	assert.Equal(t, 0, cfg.StreetView.Heading)
	assert.Equal(t, 0, cfg.StreetView.Pitch)
	assert.Equal(t, "best.onnx", cfg.Detector.ModelPath)
	assert.Equal(t, "best.names", cfg.Detector.NamesPath)
	assert.Equal(t, 640, cfg.Detector.InputSize)
	assert.Equal(t, 100, cfg.Detector.MaxDetections)
	assert.Equal(t, "reports", cfg.Reports.Dir)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.UI.ShowMapLink)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.InDelta(t, 10.0, cfg.Google.RPS, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
google:
  api_key: file-key
streetview:
  fov: 110
reports:
  dir: /var/reports
ui:
  background_image: https://example.com/bg.jpg
  show_map_link: false
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Google.APIKey)
	assert.Equal(t, 110, cfg.StreetView.FOV)
	assert.Equal(t, "/var/reports", cfg.Reports.Dir)
	assert.Equal(t, "https://example.com/bg.jpg", cfg.UI.BackgroundImage)
	assert.False(t, cfg.UI.ShowMapLink)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, "640x640", cfg.StreetView.Size)
}

func TestLoadEnvOnly(t *testing.T) {
	// No config.yaml at all: the environment alone must be able to supply
	// the API key.
	chTempDir(t)

	t.Setenv("ROADSCAN_GOOGLE_API_KEY", "env-only-key")
	t.Setenv("ROADSCAN_UI_BACKGROUND_IMAGE", "https://example.com/bg.jpg")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-only-key", cfg.Google.APIKey)
	assert.Equal(t, "https://example.com/bg.jpg", cfg.UI.BackgroundImage)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
google:
  api_key: file-key
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ROADSCAN_GOOGLE_API_KEY", "env-key")
	t.Setenv("ROADSCAN_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "env-key", cfg.Google.APIKey)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate_MissingAPIKey(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "google.api_key")

	cfg.Google.APIKey = "k"
	assert.NoError(t, cfg.Validate())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
