// Package config resolves settings from the environment with an optional
// YAML overlay file. The API key is env-only and never written anywhere.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIKey  string
	BaseURL string

	OCRModel string
	Port     string

	BatchDelay    time.Duration
	UploadLimitMB int
}

// Load resolves configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		APIKey:        os.Getenv("MISTRAL_API_KEY"),
		BaseURL:       envOr("MISTRAL_BASE_URL", ""),
		OCRModel:      envOr("OCR_MODEL", "mistral-ocr-latest"),
		Port:          envOr("PORT", "8888"),
		BatchDelay:    envOrDuration("BATCH_DELAY", time.Second),
		UploadLimitMB: envOrInt("UPLOAD_LIMIT_MB", 50),
	}
}

// fileConfig mirrors Config for the YAML overlay. Durations are strings so
// the file can say "500ms" or "2s". The API key is deliberately absent.
type fileConfig struct {
	BaseURL       string `yaml:"base_url"`
	OCRModel      string `yaml:"ocr_model"`
	Port          string `yaml:"port"`
	BatchDelay    string `yaml:"batch_delay"`
	UploadLimitMB int    `yaml:"upload_limit_mb"`
}

// ApplyFile overlays non-empty values from a YAML file onto c.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.BaseURL != "" {
		c.BaseURL = fc.BaseURL
	}
	if fc.OCRModel != "" {
		c.OCRModel = fc.OCRModel
	}
	if fc.Port != "" {
		c.Port = fc.Port
	}
	if fc.BatchDelay != "" {
		d, err := time.ParseDuration(fc.BatchDelay)
		if err != nil {
			return fmt.Errorf("invalid batch_delay %q: %w", fc.BatchDelay, err)
		}
		c.BatchDelay = d
	}
	if fc.UploadLimitMB > 0 {
		c.UploadLimitMB = fc.UploadLimitMB
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envOrDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
