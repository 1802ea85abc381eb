// Package config reads settings from the environment, after loading a .env
// file from the working directory if there is one.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ironsheep/relic-scan/internal/market"
	"github.com/ironsheep/relic-scan/internal/ocr"
)

// Environment variable names.
const (
	EnvLogLevel      = "RELICSCAN_LOG_LEVEL"
	EnvDebug         = "RELICSCAN_DEBUG"
	EnvCatalog       = "RELICSCAN_CATALOG"
	EnvOCRLanguage   = "RELICSCAN_OCR_LANGUAGE"
	EnvTessdata      = "RELICSCAN_TESSDATA"
	EnvOCRThreshold  = "RELICSCAN_OCR_THRESHOLD"
	EnvOCRUpscale    = "RELICSCAN_OCR_UPSCALE"
	EnvMarketURL     = "RELICSCAN_MARKET_URL"
	EnvPlatform      = "RELICSCAN_PLATFORM"
	EnvMarketTimeout = "RELICSCAN_MARKET_TIMEOUT"
)

// Config is the runtime configuration for every relic-scan command.
type Config struct {
	LogLevel zerolog.Level

	// Debug turns on matcher traces in scan output and logs.
	Debug bool

	// CatalogPath is a text or JSON catalog file. Empty uses the built-in list.
	CatalogPath string

	OCR    ocr.Options
	Market market.Options
}

// Load reads the configuration. A missing .env file is not an error; a
// malformed value is.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:    zerolog.InfoLevel,
		CatalogPath: os.Getenv(EnvCatalog),
		OCR:         ocr.DefaultOptions(),
		Market: market.Options{
			BaseURL:  market.DefaultBaseURL,
			Platform: market.DefaultPlatform,
			Timeout:  market.DefaultTimeout,
		},
	}

	if v := env(EnvLogLevel); v != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = level
	}

	if v := env(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvDebug, err)
		}
		cfg.Debug = debug
	}

	if v := env(EnvOCRLanguage); v != "" {
		cfg.OCR.Language = v
	}
	cfg.OCR.TessdataPrefix = env(EnvTessdata)

	if v := env(EnvOCRThreshold); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("%s: want 1-255, got %q", EnvOCRThreshold, v)
		}
		cfg.OCR.Threshold = uint8(n)
	}

	if v := env(EnvOCRUpscale); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 1 {
			return nil, fmt.Errorf("%s: want a number >= 1, got %q", EnvOCRUpscale, v)
		}
		cfg.OCR.Upscale = f
	}

	if v := env(EnvMarketURL); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := env(EnvPlatform); v != "" {
		cfg.Market.Platform = v
	}

	if v := env(EnvMarketTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvMarketTimeout, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("%s: must be positive, got %s", EnvMarketTimeout, v)
		}
		cfg.Market.Timeout = d
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
