package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "https://kinescope.io", cfg.Player.BaseURL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("PLAYER_BASE_URL", "https://video.example.com")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "https://video.example.com", cfg.Player.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadPlayerFlags(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		flags, err := LoadPlayerFlags("")
		require.NoError(t, err)
		assert.Empty(t, flags)
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flags.yaml")
		data := "autoplay: true\nui_language: en\nvolume: 0.5\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		flags, err := LoadPlayerFlags(path)
		require.NoError(t, err)
		assert.Equal(t, true, flags["autoplay"])
		assert.Equal(t, "en", flags["ui_language"])
	})

	t.Run("malformed file is fatal", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flags.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0o644))

		_, err := LoadPlayerFlags(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPlayerFlags("/nonexistent/flags.yaml")
		assert.Error(t, err)
	})
}
