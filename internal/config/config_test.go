package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvLogLevel, EnvDebug, EnvCatalog, EnvOCRLanguage, EnvTessdata,
		EnvOCRThreshold, EnvOCRUpscale, EnvMarketURL, EnvPlatform, EnvMarketTimeout,
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.CatalogPath)
	assert.Equal(t, "eng", cfg.OCR.Language)
	assert.Empty(t, cfg.OCR.TessdataPrefix)
	assert.Equal(t, uint8(140), cfg.OCR.Threshold)
	assert.Equal(t, 2.0, cfg.OCR.Upscale)
	assert.Equal(t, "https://api.warframe.market/v1", cfg.Market.BaseURL)
	assert.Equal(t, "pc", cfg.Market.Platform)
	assert.Equal(t, 10*time.Second, cfg.Market.Timeout)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvDebug, "true")
	t.Setenv(EnvCatalog, "/etc/relic/items.json")
	t.Setenv(EnvOCRLanguage, "deu")
	t.Setenv(EnvTessdata, "/opt/tessdata")
	t.Setenv(EnvOCRThreshold, "120")
	t.Setenv(EnvOCRUpscale, "3")
	t.Setenv(EnvMarketURL, "http://localhost:8080/v1")
	t.Setenv(EnvPlatform, "switch")
	t.Setenv(EnvMarketTimeout, "2s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/etc/relic/items.json", cfg.CatalogPath)
	assert.Equal(t, "deu", cfg.OCR.Language)
	assert.Equal(t, "/opt/tessdata", cfg.OCR.TessdataPrefix)
	assert.Equal(t, uint8(120), cfg.OCR.Threshold)
	assert.Equal(t, 3.0, cfg.OCR.Upscale)
	assert.Equal(t, "http://localhost:8080/v1", cfg.Market.BaseURL)
	assert.Equal(t, "switch", cfg.Market.Platform)
	assert.Equal(t, 2*time.Second, cfg.Market.Timeout)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		EnvLogLevel:      "loud",
		EnvDebug:         "perhaps",
		EnvOCRThreshold:  "300",
		EnvOCRUpscale:    "0.5",
		EnvMarketTimeout: "soon",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}

	t.Run("zero threshold", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvOCRThreshold, "0")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("negative timeout", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvMarketTimeout, "-1s")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvPlatform)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvPlatform+"=xbox\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "xbox", cfg.Market.Platform)
}

func TestLoad_NoDotEnv(t *testing.T) {
	clearEnv(t)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	_, err = Load()
	assert.NoError(t, err)
}
