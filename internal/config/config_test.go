package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowOrigins)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "google", cfg.Translate.Provider)
	assert.Equal(t, int64(10*1024*1024), cfg.Uploads.MaxSizeBytes)
	assert.Equal(t, uint(800), cfg.Uploads.MaxWidth)
	assert.Equal(t, 20.0, cfg.Search.MinAverageScore)
	assert.True(t, cfg.Database.Migrate)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "8081")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("APP_TRANSLATE_PROVIDER", "none")
	t.Setenv("APP_SEARCH_MIN_AVERAGE_SCORE", "35")
	t.Setenv("APP_SERVER_ALLOW_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("APP_CACHE_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.Database.URL)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "none", cfg.Translate.Provider)
	assert.Equal(t, 35.0, cfg.Search.MinAverageScore)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowOrigins)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown provider":   {"APP_TRANSLATE_PROVIDER": "babelfish"},
		"gemini without key": {"APP_TRANSLATE_PROVIDER": "gemini"},
		"zero port":          {"PORT": "0"},
		"zero body limit":    {"APP_SERVER_MAX_BODY_BYTES": "0"},
		"zero upload size":   {"APP_UPLOADS_MAX_SIZE_BYTES": "0"},
		"negative floor":     {"APP_SEARCH_MIN_AVERAGE_SCORE": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			chdir(t, t.TempDir())
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSplitComma(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitComma(" a, ,b "))
	assert.Nil(t, splitComma(" , "))
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
