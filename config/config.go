// Package config loads the engine's YAML configuration with environment
// overrides for deployment-specific values.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete engine configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Backend       BackendConfig       `yaml:"backend"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Logging       LoggingConfig       `yaml:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Address        string  `yaml:"address"`
	RatePerSecond  float64 `yaml:"rate_per_second"`
	RateBurst      int     `yaml:"rate_burst"`
	TranscriptFeed bool    `yaml:"transcript_feed"`
}

// BackendConfig configures the survey backend client.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"` // seconds
}

// TranscriptionConfig configures the speech-to-text gateway.
type TranscriptionConfig struct {
	Language       string `yaml:"language"`
	PrimaryTimeout int    `yaml:"primary_timeout"` // seconds
	WhisperModel   string `yaml:"whisper_model"`
	DeepgramModel  string `yaml:"deepgram_model"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig configures the prometheus exporter.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// Default returns a runnable configuration for local development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        ":8080",
			RatePerSecond:  5,
			RateBurst:      10,
			TranscriptFeed: true,
		},
		Backend: BackendConfig{
			Timeout: 15,
		},
		Transcription: TranscriptionConfig{
			Language:       "en",
			PrimaryTimeout: 20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Address: ":9090",
		},
	}
}

// Load reads a YAML config file over the defaults, then applies environment
// overrides. An empty path yields defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables. Credentials are
// never read here; the credential resolver owns provider keys.
func (c *Config) applyEnv() {
	if v := os.Getenv("SURVEYKIT_ADDR"); v != "" {
		c.Server.Address = v
	}
	if v := os.Getenv("SURVEYKIT_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("SURVEYKIT_LANGUAGE"); v != "" {
		c.Transcription.Language = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base_url is required (or set SURVEYKIT_BACKEND_URL)")
	}
	if c.Backend.Timeout < 1 {
		return fmt.Errorf("backend timeout must be at least 1 second, got %d", c.Backend.Timeout)
	}
	if c.Transcription.PrimaryTimeout < 1 {
		return fmt.Errorf("transcription primary_timeout must be at least 1 second, got %d", c.Transcription.PrimaryTimeout)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging level must be one of [debug, info, warn, error], got %q", c.Logging.Level)
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return fmt.Errorf("metrics address cannot be empty when metrics are enabled")
	}
	return nil
}

// BackendTimeout returns the backend client timeout as a duration.
func (c *BackendConfig) BackendTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// PrimaryTimeoutDuration returns the primary provider timeout as a duration.
func (t *TranscriptionConfig) PrimaryTimeoutDuration() time.Duration {
	return time.Duration(t.PrimaryTimeout) * time.Second
}
